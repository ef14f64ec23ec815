package entity

// GameState is the read model sent to the browser after every event.
type GameState struct {
	SessionID    string        `json:"session_id"`
	Board        Board         `json:"board"`
	ActivePlayer Mark          `json:"active_player"`
	Players      []PlayerState `json:"players"`
	Log          []LogEntry    `json:"log"`
	Winner       Mark          `json:"winner"`
	Status       string        `json:"status"`
}

type PlayerState struct {
	Name    string `json:"name"`
	Symbol  Mark   `json:"symbol"`
	Editing bool   `json:"editing"`
	Active  bool   `json:"active"`
}

// LogEntry is one line of the move log, newest first.
type LogEntry struct {
	Player Mark   `json:"player"`
	Square Square `json:"square"`
	Text   string `json:"text"`
}
