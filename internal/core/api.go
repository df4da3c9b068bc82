package core

// Request types

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"`
}

type ColorRequest struct {
	Color string `json:"color" validate:"required,oneof=white black"`
}

type DifficultyRequest struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// Response types

// Status values carried in GameResponse.Status.
const (
	StatusSuccess       = "Success"
	StatusGameOver      = "Game Over"
	StatusColorSet      = "Color set"
	StatusDifficultySet = "Difficulty set"
	StatusBoardReset    = "Board reset"
	StatusTakenBack     = "Moves taken back"
)

// GameResponse is the body returned by every game endpoint. Fields not
// relevant to an endpoint are omitted.
type GameResponse struct {
	Status      string `json:"status,omitempty"`
	Result      string `json:"result,omitempty"`
	FEN         string `json:"fen,omitempty"`
	AIMove      string `json:"ai_move,omitempty"`
	PlayerColor string `json:"player_color,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Error       string `json:"error,omitempty"`
}

// StateResponse describes the current server game.
type StateResponse struct {
	GameID      string   `json:"gameId"`
	FEN         string   `json:"fen"`
	Turn        string   `json:"turn"`
	PlayerColor string   `json:"player_color"`
	Difficulty  string   `json:"difficulty"`
	Moves       []string `json:"moves"`
	Result      string   `json:"result,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
