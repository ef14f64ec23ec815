package entity

import (
	"strings"
	"unicode/utf8"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
)

const MaxNameLength = 32

// Player holds a player's name and the state of its name editor.
type Player struct {
	Name    string `json:"name"`
	Symbol  Mark   `json:"symbol"`
	Editing bool   `json:"editing"`
	Draft   string `json:"draft,omitempty"`
}

func NewPlayer(name string, symbol Mark) *Player {
	return &Player{
		Name:   clampName(name),
		Symbol: symbol,
	}
}

// ToggleEditing - switches between display and edit mode. Leaving edit mode saves the draft.
func (that *Player) ToggleEditing() {
	if !that.Editing {
		that.Editing = true
		that.Draft = that.Name
		return
	}

	// a blank name is not accepted, the previous one stays
	if strings.TrimSpace(that.Draft) != "" {
		that.Name = that.Draft
	}

	that.Editing = false
	that.Draft = ""
}

// ChangeName - replaces the draft name while editing.
func (that *Player) ChangeName(name string) error {
	if !that.Editing {
		return apperror.ErrNotEditing
	}

	that.Draft = clampName(name)

	return nil
}

// DisplayName - the text shown for the player: the draft while editing, the saved name otherwise.
func (that *Player) DisplayName() string {
	if that.Editing {
		return that.Draft
	}
	return that.Name
}

func clampName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}

	return string([]rune(name)[:MaxNameLength])
}
