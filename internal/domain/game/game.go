package game

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	ColorBlack = "black"
	ColorWhite = "white"
)

// Stone — точка доски в единичной системе координат (1..size),
// общей для движка, клиента и разобранных записей.
type Stone struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameData — итог разбора одной SGF-записи: размер доски и выжившие
// камни обеих сторон, отсортированные по ключу x*size+y.
type GameData struct {
	Size        int     `json:"size"`
	WhiteStones []Stone `json:"white_stones"`
	BlackStones []Stone `json:"black_stones"`
}

type Game struct {
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	StartedAt     *time.Time      `json:"started_at,omitempty" bson:"started_at,omitempty"`
	Status        string          `json:"status" bson:"status"`
	BoardSize     int             `json:"board_size" bson:"board_size"`
	GameKeySecret string          `json:"game_key_secret" bson:"game_key_secret"`
	GameKeyPublic string          `json:"game_key_public" bson:"game_key_public"`
	WhoIsNext     string          `json:"who_is_next" bson:"who_is_next"` // color
	PlayerBlack   string          `json:"player_black" bson:"player_black"`
	PlayerWhite   string          `json:"player_white" bson:"player_white"`
	Komi          float64         `json:"komi" bson:"komi"`
	Sgf           string          `json:"sgf,omitempty" bson:"-"`
	PlayerBlackWS *websocket.Conn `json:"-" bson:"-"`
	PlayerWhiteWS *websocket.Conn `json:"-" bson:"-"`
}

type CreateGameRequest struct {
	BoardSize      int     `json:"board_size"`
	Komi           float64 `json:"komi"`
	IsCreatorBlack bool    `json:"is_creator_black"`
	PlayerID       string  `json:"player_id"`
}

type GameCreateResponse struct {
	GameKeyPublic string `json:"game_key_public"`
	GameKeySecret string `json:"game_key_secret"`
}

type GameJoinRequest struct {
	GameKeyPublic string `json:"game_key_public"`
	PlayerID      string `json:"player_id"`
}

// GameStateResponse уходит оппоненту после каждого хода: сам ход,
// обновлённый SGF и готовое к отрисовке состояние доски.
type GameStateResponse struct {
	Move  Move     `json:"move"`
	SGF   string   `json:"sgf"`
	Board GameData `json:"board"`
}
