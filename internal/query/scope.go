package query

import "github.com/Jirapat-K-F/SLEEP-FINAL-PROJECT/internal/models"

// Scope is the caller and route context a list runs under.
type Scope struct {
	Role     models.UserRole
	UserID   uint
	ParentID *uint
}

// Apply narrows f in place: non-admins only ever see their own rows, whatever owner
// filter they sent; admins listing under a parent route see that parent's rows.
func (s Scope) Apply(f Filter, ownerField, parentField string) Filter {
	switch {
	case !s.Role.IsAdmin():
		f.Set(ownerField, int64(s.UserID))
	case s.ParentID != nil:
		f.Set(parentField, int64(*s.ParentID))
	}
	return f
}
