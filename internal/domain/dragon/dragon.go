package dragon

import "time"

// LoginInfo хранится в json-файле на планшете (DRAGON_LOGIN_FILE).
type LoginInfo struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GameRecord — одна строка ленты quick_status.php?version=2 (строки "G").
type GameRecord struct {
	GameID                 string        `json:"game_id"`
	OpponentHandle         string        `json:"opponent_handle"`
	PlayerColor            string        `json:"player_color"`
	LastMoveDate           time.Time     `json:"lastmove_date"`
	TimeRemaining          time.Duration `json:"time_remaining"`
	GameAction             int           `json:"game_action"`
	GameStatus             string        `json:"game_status"`
	MoveID                 int           `json:"move_id"`
	TournamentID           int           `json:"tournament_id"`
	ShapeID                int           `json:"shape_id"`
	GameType               string        `json:"game_type"`
	GamePrio               int           `json:"game_prio"`
	OpponentLastAccessDate time.Time     `json:"opponent_lastaccess_date"`
	Handicap               int           `json:"handicap"`
}
