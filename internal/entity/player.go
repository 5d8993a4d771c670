package entity

type Player struct {
	ID     string `json:"id"`
	Piece  Piece  `json:"piece,omitempty"`
	GameID string `json:"game_id,omitempty"`
}
