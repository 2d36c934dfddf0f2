package game

// @name Move
type Move struct {
	Color       string `json:"color"`       // "B" или "W"
	Coordinates string `json:"coordinates"` // пара букв SGF, пустая строка — пас
}

// @name Moves
type Moves struct {
	Moves []Move `json:"moves"`
}
