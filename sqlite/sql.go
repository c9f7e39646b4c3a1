package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hoshinonyaruko/centipede-in-im/structs"
)

const createGamesTableSQL = `
CREATE TABLE IF NOT EXISTS Games (
    GroupID TEXT PRIMARY KEY,
    State TEXT,
    Score INTEGER,
    Lives INTEGER,
    Level INTEGER,
    LastRefresh TIMESTAMP,
    Snapshot TEXT
);
`

const createScoresTableSQL = `
CREATE TABLE IF NOT EXISTS Scores (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    GroupID TEXT,
    Score INTEGER,
    Level INTEGER,
    CreatedAt TIMESTAMP
);
`

const createScoresIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_scores_score ON Scores (Score DESC);
`

func executeSQL(db *sql.DB, sqlStatement string) error {
	if _, err := db.Exec(sqlStatement); err != nil {
		return fmt.Errorf("executing SQL statement %q: %w", sqlStatement, err)
	}
	return nil
}

// InitializeDatabase 建表
func InitializeDatabase(db *sql.DB) error {
	for _, stmt := range []string{createGamesTableSQL, createScoresTableSQL, createScoresIndexSQL} {
		if err := executeSQL(db, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Open 打开数据库文件并建表
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// sqlite 只允许一个写连接
	db.SetMaxOpenConns(1)
	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// LoadGame reads a group's game. It returns sql.ErrNoRows when the group has
// no game yet.
func LoadGame(db *sql.DB, groupID string) (*structs.Game, error) {
	var data string
	err := db.QueryRow("SELECT Snapshot FROM Games WHERE GroupID = ?", groupID).Scan(&data)
	if err != nil {
		return nil, err
	}

	game := &structs.Game{GroupID: groupID}
	if err := json.Unmarshal([]byte(data), &game.Snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot of %s: %w", groupID, err)
	}
	return game, nil
}

// SaveGame 保存或覆盖一个群的游戏
func SaveGame(db *sql.DB, game *structs.Game) error {
	data, err := json.Marshal(game.Snapshot)
	if err != nil {
		return err
	}

	// 开启事务
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	s := game.Snapshot
	_, err = tx.Exec("INSERT OR REPLACE INTO Games (GroupID, State, Score, Lives, Level, LastRefresh, Snapshot) VALUES (?, ?, ?, ?, ?, ?, ?)",
		game.GroupID, string(s.State), s.Score, s.Lives, s.Level, s.LastUpdate, string(data))
	if err != nil {
		tx.Rollback()
		return err
	}

	// 提交事务
	return tx.Commit()
}

// DeleteGame 删除一个群的游戏，返回是否确实删除了记录
func DeleteGame(db *sql.DB, groupID string) (bool, error) {
	result, err := db.Exec("DELETE FROM Games WHERE GroupID = ?", groupID)
	if err != nil {
		return false, err
	}
	count, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordScore 记录一局结束时的得分
func RecordScore(db *sql.DB, rec structs.ScoreRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := db.Exec("INSERT INTO Scores (GroupID, Score, Level, CreatedAt) VALUES (?, ?, ?, ?)",
		rec.GroupID, rec.Score, rec.Level, rec.CreatedAt)
	return err
}

// TopScores returns the best scores, highest first.
func TopScores(db *sql.DB, limit int) ([]structs.ScoreRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query("SELECT GroupID, Score, Level, CreatedAt FROM Scores ORDER BY Score DESC, ID ASC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []structs.ScoreRecord
	for rows.Next() {
		var rec structs.ScoreRecord
		if err := rows.Scan(&rec.GroupID, &rec.Score, &rec.Level, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
