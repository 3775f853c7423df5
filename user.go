package askme

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type UserSettings struct {
	NotifyOnAnswer bool `json:"notify_on_answer,omitempty"`
}

func (us UserSettings) Value() (driver.Value, error) {
	return json.Marshal(us)
}

func (us *UserSettings) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("can't decode user settings")
	}

	return json.Unmarshal(b, &us)
}

// A User is a registered member, identified on the site by its acronym.
// ActivityScore, NumVotes and NumAccepts are incrementally maintained
// counters owned by the vote and accept workflows; everything else shown on
// a profile page is recomputed per view, see the rank package.
type User struct {
	ID            int64        `db:"id"`
	Acronym       string       `db:"acronym"`
	Email         string       `db:"email"`
	ActivityScore int64        `db:"activity_score"`
	NumVotes      int64        `db:"num_votes"`
	NumAccepts    int64        `db:"num_accepts"`
	Settings      UserSettings `db:"settings"`
	CreatedAt     time.Time    `db:"created_at"`
	LastLoginAt   time.Time    `db:"last_login_at"`
}
