package gamelist

// CategoryID is a stable handle to a category record inside one GameList.
type CategoryID int

// Category is a named tag owned by a GameList. Count is derived from the games that
// currently hold it and is maintained by every Game mutation.
type Category struct {
	list  *GameList
	name  string
	id    CategoryID
	count int
}

// ID returns the category's handle.
func (c *Category) ID() CategoryID {
	return c.id
}

// Name returns the category's current name.
func (c *Category) Name() string {
	return c.name
}

// Count returns the number of games that hold this category.
func (c *Category) Count() int {
	return c.count
}

// Removed reports whether the category has been deleted from its GameList.
func (c *Category) Removed() bool {
	return c.list == nil
}

func (c *Category) String() string {
	return c.name
}
