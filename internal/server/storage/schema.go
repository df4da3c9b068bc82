package storage

import "time"

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID       string    `db:"game_id"`
	PlayerColor  string    `db:"player_color"`
	Difficulty   string    `db:"difficulty"`
	StartTimeUTC time.Time `db:"start_time_utc"`
	Result       string    `db:"result"` // empty while the game is running
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID       int64     `db:"move_id"`
	GameID       string    `db:"game_id"`
	MoveNumber   int       `db:"move_number"` // ply, starting at 1
	MoveUCI      string    `db:"move_uci"`
	FENAfterMove string    `db:"fen_after_move"`
	Actor        string    `db:"actor"`
	MoveTimeUTC  time.Time `db:"move_time_utc"`
}

// Actors stored in moves.actor
const (
	ActorPlayer = "player"
	ActorAI     = "ai"
)

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	player_color TEXT NOT NULL CHECK(player_color IN ('white', 'black')),
	difficulty TEXT NOT NULL CHECK(difficulty IN ('easy', 'medium', 'hard')),
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	result TEXT
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	move_uci TEXT NOT NULL,
	fen_after_move TEXT NOT NULL,
	actor TEXT NOT NULL CHECK(actor IN ('player', 'ai')),
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
CREATE INDEX IF NOT EXISTS idx_games_start_time ON games(start_time_utc);
`
