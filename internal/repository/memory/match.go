package memory

import (
	"sort"

	"procuredoc-be/internal/entity"
	"procuredoc-be/internal/repository/specification"
)

// The in-memory repositories interpret the subset of specifications the
// services actually use. Unknown specification types are treated as
// non-matching so a test fails loudly instead of silently over-matching.

func sectionMatches(s *entity.Section, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.ByDocument:
			if s.DocumentId != sp.DocumentID {
				return false
			}
		case specification.BySectionType:
			if s.Type != sp.Type {
				return false
			}
		case specification.ByStatus:
			if s.Status != sp.Status {
				return false
			}
		case specification.ByStatuses:
			if !containsString(sp.Statuses, s.Status) {
				return false
			}
		case specification.OrderBy:
			// ordering handled by the caller
		default:
			return false
		}
	}
	return true
}

func documentMatches(d *entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if d.Id != sp.ID {
				return false
			}
		case specification.TenantOwnedBy:
			if d.TenantId != sp.TenantID {
				return false
			}
		case specification.OrderBy:
		default:
			return false
		}
	}
	return true
}

func jobMatches(j *entity.GenerationJob, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if j.Id != sp.ID {
				return false
			}
		case specification.ByDocument:
			if j.DocumentId != sp.DocumentID {
				return false
			}
		case specification.BySection:
			if j.SectionId != sp.SectionID {
				return false
			}
		case specification.TenantOwnedBy:
			if j.TenantId != sp.TenantID {
				return false
			}
		case specification.ByStatus:
			if j.Status != sp.Status {
				return false
			}
		case specification.ByStatuses:
			if !containsString(sp.Statuses, j.Status) {
				return false
			}
		case specification.OrderBy:
		default:
			return false
		}
	}
	return true
}

func sortSections(sections []*entity.Section, specs []specification.Specification) {
	for _, spec := range specs {
		if ord, ok := spec.(specification.OrderBy); ok && ord.Field == "position" {
			sort.Slice(sections, func(i, j int) bool {
				if ord.Desc {
					return sections[i].Position > sections[j].Position
				}
				return sections[i].Position < sections[j].Position
			})
		}
	}
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
