package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/cpanmeta/pkg/errors"
	"github.com/matzehuels/cpanmeta/pkg/history"
	"github.com/matzehuels/cpanmeta/pkg/location"
	"github.com/matzehuels/cpanmeta/pkg/search"
)

// urlCommand groups the location codec tools.
func (c *CLI) urlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Decode, encode and migrate page locations",
	}

	cmd.AddCommand(c.urlDecodeCommand())
	cmd.AddCommand(c.urlEncodeCommand())
	cmd.AddCommand(c.urlRedirectCommand())

	return cmd
}

func (c *CLI) urlDecodeCommand() *cobra.Command {
	var searchType string

	cmd := &cobra.Command{
		Use:   "decode <location>",
		Short: "Show the search parameters carried by a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(searchType)
			if err != nil {
				return err
			}
			raw := args[0]
			d, ok := location.Decode(raw)
			if !ok {
				return apperrors.New(apperrors.ErrCodeInvalidLocation, "no search in location %q", raw)
			}
			p := d.Params(pageType(raw, t))

			printKeyValue("grammar", d.Version.String())
			printKeyValue("type", p.Type.String())
			printKeyValue("module", p.Query)
			printKeyValue("author", p.Author)
			printKeyValue("match_mode", p.Mode.String())
			printKeyValue("other", strconv.FormatBool(p.OtherAuthors))
			printKeyValue("searchable", strconv.FormatBool(p.Searchable()))
			if d.Version.Legacy() {
				printNextStep("Current form", location.QueryCodec{}.Encode(p))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&searchType, "type", "t", string(search.Packages), "page type for locations without a path")
	return cmd
}

func (c *CLI) urlEncodeCommand() *cobra.Command {
	var (
		searchType   string
		module       string
		author       string
		mode         string
		otherAuthors bool
		fragment     bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the location for a search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(searchType)
			if err != nil {
				return err
			}
			m := search.DefaultMatchMode
			if mode != "" {
				var ok bool
				if m, ok = search.ParseMatchMode(mode); !ok {
					return apperrors.New(apperrors.ErrCodeInvalidMatchMode, "unknown match mode %q", mode)
				}
			}
			p := search.Params{Type: t, Query: module, Author: author, Mode: m, OtherAuthors: otherAuthors}

			var codec location.Codec = location.QueryCodec{}
			if fragment {
				if m == search.Infix {
					printWarning("fragments have no infix form; encoding as prefix")
				}
				codec = location.FragmentCodec{Type: t}
			}
			fmt.Fprintln(cmd.OutOrStdout(), codec.Encode(p))
			return nil
		},
	}

	cmd.Flags().StringVarP(&searchType, "type", "t", string(search.Packages), "search type: packages, perms, authors")
	cmd.Flags().StringVar(&module, "module", "", "module or package text")
	cmd.Flags().StringVarP(&author, "author", "a", "", "author id")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "match mode: exact, prefix, infix")
	cmd.Flags().BoolVar(&otherAuthors, "other-authors", false, "include other authors")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "emit the old fragment form")
	return cmd
}

func (c *CLI) urlRedirectCommand() *cobra.Command {
	var searchType string

	cmd := &cobra.Command{
		Use:   "redirect <location>",
		Short: "Migrate an old fragment location to the current form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(searchType)
			if err != nil {
				return err
			}
			raw := args[0]
			h := history.New(raw)
			target, ok := location.NewRedirector(h, c.Logger).Run(pageType(raw, t))
			if !ok {
				printInfo("Nothing to migrate")
				printDetail("%s", raw)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			printNextStep("Browse it", fmt.Sprintf("%s browse '%s'", appName, target))
			return nil
		},
	}

	cmd.Flags().StringVarP(&searchType, "type", "t", string(search.Packages), "page type for locations without a path")
	return cmd
}

func parseTypeFlag(s string) (search.SearchType, error) {
	t, ok := search.ParseSearchType(s)
	if !ok {
		return "", apperrors.New(apperrors.ErrCodeInvalidSearchType, "unknown search type %q", s)
	}
	return t, nil
}
