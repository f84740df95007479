// Package archive writes finished hands to Postgres so transcripts survive
// the capture server process. Archival is optional; when no Postgres host is
// configured the store is nil and callers skip it.
package archive

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/KillerEXXD/hhcapture-sub002/engine"
	"github.com/KillerEXXD/hhcapture-sub002/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const handsSchema = `
CREATE TABLE IF NOT EXISTS captured_hands (
	id           BIGSERIAL PRIMARY KEY,
	session_code TEXT NOT NULL,
	hand_code    TEXT NOT NULL,
	hand_num     INTEGER NOT NULL,
	setup_text   TEXT NOT NULL,
	final_stacks JSONB NOT NULL,
	pots         JSONB NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// ArchivedHand is one finished hand as stored in the captured_hands table.
type ArchivedHand struct {
	SessionCode string                          `json:"sessionCode"`
	HandCode    string                          `json:"handCode"`
	HandNum     uint32                          `json:"handNum"`
	SetupText   string                          `json:"setupText"`
	FinalStacks map[uint64]int64                `json:"finalStacks"`
	Pots        map[string]*engine.PotStructure `json:"pots"`
	FinishedAt  time.Time                       `json:"finishedAt"`
}

type HandStore struct {
	db *sqlx.DB
}

func GetConnStr() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		util.Env.GetPostgresHost(),
		util.Env.GetPostgresPort(),
		util.Env.GetPostgresUser(),
		util.Env.GetPostgresPW(),
		util.Env.GetPostgresDB(),
	)
}

// NewHandStore connects to Postgres and creates the captured_hands table if
// it does not exist yet.
func NewHandStore() (*HandStore, error) {
	db, err := sqlx.Connect("postgres", GetConnStr())
	if err != nil {
		return nil, errors.Wrap(err, "Unable to connect to the hands database")
	}
	_, err = db.Exec(handsSchema)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Unable to create the captured_hands table")
	}
	return &HandStore{db: db}, nil
}

func (s *HandStore) Close() error {
	return s.db.Close()
}

func (s *HandStore) Save(hand *ArchivedHand) error {
	stacksJSON, err := json.Marshal(hand.FinalStacks)
	if err != nil {
		return errors.Wrap(err, "Unable to marshal final stacks")
	}
	potsJSON, err := json.Marshal(hand.Pots)
	if err != nil {
		return errors.Wrap(err, "Unable to marshal pots")
	}
	result, err := s.db.Exec(
		`INSERT INTO captured_hands (session_code, hand_code, hand_num, setup_text, final_stacks, pots, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		hand.SessionCode, hand.HandCode, hand.HandNum, hand.SetupText,
		stacksJSON, potsJSON, hand.FinishedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "Unable to insert hand %s", hand.HandCode)
	}
	numRows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if numRows != 1 {
		return fmt.Errorf("Rows inserted != 1")
	}
	util.Metrics.HandArchived()
	return nil
}

// Recent returns newest-first hand codes archived for a session.
func (s *HandStore) Recent(sessionCode string, limit int) ([]string, error) {
	var handCodes []string
	err := s.db.Select(&handCodes,
		`SELECT hand_code FROM captured_hands WHERE session_code = $1 ORDER BY finished_at DESC LIMIT $2`,
		sessionCode, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to query hands for session %s", sessionCode)
	}
	return handCodes, nil
}
