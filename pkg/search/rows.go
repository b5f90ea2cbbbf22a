package search

// Cell is one display cell of a result row.
type Cell struct {
	Text  string
	Link  string // link target, "" if the cell is plain text
	Title string // secondary text (e.g. the ASCII form of a name)
}

// Columns returns the column headers for a search type.
func Columns(t SearchType) []string {
	switch t {
	case Perms:
		return []string{"module", "author", "best_permission", "owner"}
	case Authors:
		return []string{"author", "fullname", "email", "homepage", "introduced", "has_cpandir"}
	default:
		return []string{"module", "version", "owner", "uploader", "path"}
	}
}

// Row converts a record into cells matching [Columns] for t.
func Row(t SearchType, r Record) []Cell {
	cols := Columns(t)
	cells := make([]Cell, len(cols))
	for i, col := range cols {
		cells[i] = cell(col, r)
	}
	return cells
}

func cell(col string, r Record) Cell {
	switch col {
	case "module":
		if r.Module == "" {
			return Cell{}
		}
		return Cell{Text: r.Module, Link: ModuleURL(r.Module)}
	case "version":
		return Cell{Text: r.Version}
	case "owner":
		return authorCell(r.Owner)
	case "uploader":
		return authorCell(r.Uploader)
	case "author":
		return authorCell(r.Author)
	case "path":
		if r.Path == "" {
			return Cell{}
		}
		return Cell{Text: r.Path, Link: ReleaseURL(r.Path)}
	case "best_permission":
		return Cell{Text: PermissionName(r.BestPermission)}
	case "fullname":
		c := Cell{Text: r.Fullname}
		if r.ASCIIName != "" && r.ASCIIName != r.Fullname {
			c.Title = r.ASCIIName
		}
		return c
	case "email":
		return Cell{Text: r.Email, Link: Contact(r.Email)}
	case "homepage":
		return Cell{Text: r.Homepage, Link: r.Homepage}
	case "introduced":
		return Cell{Text: Introduced(r.Introduced)}
	case "has_cpandir":
		if !r.HasCPANDir {
			return Cell{}
		}
		return Cell{Text: CPANDir(r.Author), Link: CPANDirURL(r.Author)}
	}
	return Cell{}
}

func authorCell(id string) Cell {
	if id == "" {
		return Cell{}
	}
	return Cell{Text: id, Link: AuthorURL(id)}
}

// Texts returns the plain text of each cell.
func Texts(cells []Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Text
	}
	return out
}
