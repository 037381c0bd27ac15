package item

import "github.com/cambridge-collection/cudl-pack/internal/namespace"

// ExpandedRoles returns the set of d's roles, each expanded against ns.
func ExpandedRoles(d Data, ns *namespace.Namespace) map[string]bool {
	roles := make(map[string]bool, len(d.Roles))
	for _, r := range d.Roles {
		roles[ns.Expand(r)] = true
	}
	return roles
}

// DataQuery selects item data entries.
type DataQuery struct {
	// Type is the expanded type URI entries must have. Empty matches any type.
	Type string

	// Roles are CURIEs or URIs; an entry must carry all of them.
	Roles []string
}

// FindData returns the entries of it.Data matching q, in document order.
func (it *Item) FindData(ns *namespace.Namespace, q DataQuery) []Data {
	var result []Data
	for _, d := range it.Data {
		if q.Type != "" && ns.Expand(d.Type) != q.Type {
			continue
		}
		if !hasRoles(d, ns, q.Roles) {
			continue
		}
		result = append(result, d)
	}
	return result
}

func hasRoles(d Data, ns *namespace.Namespace, required []string) bool {
	if len(required) == 0 {
		return true
	}
	have := ExpandedRoles(d, ns)
	for _, r := range required {
		if !have[ns.Expand(r)] {
			return false
		}
	}
	return true
}

// Links returns the href of every cdl-data:link entry carrying all roles.
func (it *Item) Links(ns *namespace.Namespace, roles ...string) ([]string, error) {
	var hrefs []string
	for _, d := range it.FindData(ns, DataQuery{Type: namespace.DataLink, Roles: roles}) {
		var link LinkData
		if err := d.Decode(&link); err != nil {
			return nil, err
		}
		if link.Href.ID != "" {
			hrefs = append(hrefs, link.Href.ID)
		}
	}
	return hrefs, nil
}
