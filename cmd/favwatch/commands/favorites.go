package commands

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/favwatch/internal/state"
)

// FavoritesCmd groups the favorites list operations.
type FavoritesCmd struct {
	Add    FavoritesAddCmd    `cmd:"" help:"Add a character to the favorites list"`
	Remove FavoritesRemoveCmd `cmd:"" help:"Remove a character from the favorites list"`
	List   FavoritesListCmd   `cmd:"" help:"List favorites with their cached presence"`
}

// FavoritesAddCmd implements 'favorites add'.
type FavoritesAddCmd struct {
	Name string `arg:"" help:"Character name"`
}

func (c *FavoritesAddCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}

	err = store.Update(func(m *state.MonitorState) error {
		return m.AddFavorite(c.Name)
	})
	switch {
	case errors.Is(err, state.ErrBlankName):
		return fmt.Errorf("character name must not be blank")
	case errors.Is(err, state.ErrDuplicateFavorite):
		return fmt.Errorf("%q is already a favorite", c.Name)
	case errors.Is(err, state.ErrTooManyFavorites):
		return fmt.Errorf("favorites list is full (max %d)", state.MaxFavorites)
	case err != nil:
		return err
	}

	fmt.Printf("Added %q to favorites\n", c.Name)
	return nil
}

// FavoritesRemoveCmd implements 'favorites remove'.
type FavoritesRemoveCmd struct {
	Name string `arg:"" help:"Character name (case-insensitive)"`
}

func (c *FavoritesRemoveCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}

	removed := false
	if err := store.Update(func(m *state.MonitorState) error {
		removed = m.RemoveFavorite(c.Name)
		return nil
	}); err != nil {
		return err
	}

	if !removed {
		return fmt.Errorf("%q is not a favorite", c.Name)
	}
	fmt.Printf("Removed %q from favorites\n", c.Name)
	return nil
}

// FavoritesListCmd implements 'favorites list'.
type FavoritesListCmd struct{}

func (c *FavoritesListCmd) Run(_ *Global, root *CLI) error {
	store, err := openStore(root)
	if err != nil {
		return err
	}

	m, err := store.Load()
	if err != nil {
		return err
	}

	if len(m.Favorites) == 0 {
		fmt.Println("No favorites configured")
		return nil
	}

	for _, name := range m.Favorites {
		fs := m.FavoriteState(name)
		fmt.Printf("%-20s %s\n", name, fs.LastKnown)
	}
	return nil
}
