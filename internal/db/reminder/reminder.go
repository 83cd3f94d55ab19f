package reminder

import (
	"context"
	"errors"
	c "medbot/internal/core/domain/common"
	e "medbot/internal/core/domain/errors"
	"medbot/internal/core/domain/localtime"
	"medbot/internal/core/domain/logging"
	"medbot/internal/core/domain/reminder"
	"medbot/internal/core/domain/user"
	"medbot/internal/db"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const reminderColumns = `r.id, r.owner_id, r.time_of_day, r.label, r.state,
	r.last_sent_on, r.last_sent_at, r.last_confirmed_on,
	r.streak, r.longest_streak, r.notification_id, r.created_at`

type PgxReminderRepository struct {
	db  db.DBTX
	log logging.Logger
}

func NewPgxReminderRepository(conn db.DBTX, log logging.Logger) *PgxReminderRepository {
	if conn == nil {
		panic(e.NewNilArgumentError("db"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &PgxReminderRepository{db: conn, log: log}
}

func (r *PgxReminderRepository) Create(ctx context.Context, input reminder.CreateInput) (reminder.Reminder, error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO reminder AS r (owner_id, time_of_day, label, state, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+reminderColumns,
		int64(input.OwnerID),
		input.TimeOfDay.String(),
		input.Label,
		reminder.StatePending.String(),
		input.CreatedAt,
	)
	return scanReminder(row)
}

func (r *PgxReminderRepository) GetByID(ctx context.Context, id reminder.ID) (reminder.Reminder, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reminderColumns+` FROM reminder r WHERE r.id = $1`, int64(id))
	return scanReminder(row)
}

// ListDueCandidates returns every reminder with its owner's timezone. Rows that
// can't be decoded or fail validation are logged and left out.
func (r *PgxReminderRepository) ListDueCandidates(ctx context.Context) ([]reminder.Candidate, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+reminderColumns+`, u.timezone
		FROM reminder r JOIN "user" u ON u.id = r.owner_id
		ORDER BY r.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]reminder.Candidate, 0)
	for rows.Next() {
		var timezone pgtype.Text
		rem, err := scanReminder(rows, &timezone)
		if err != nil {
			r.log.Error(
				ctx,
				"Skipping reminder that could not be read.",
				logging.Entry("reminderID", rem.ID),
				logging.Entry("err", err),
			)
			continue
		}
		candidates = append(candidates, reminder.Candidate{Reminder: rem, Timezone: db.DecodeText(timezone)})
	}
	return candidates, rows.Err()
}

func (r *PgxReminderRepository) ConditionalUpdate(ctx context.Context, input reminder.UpdateInput) (bool, error) {
	var notificationID c.Optional[string]
	if input.NotificationID.IsPresent {
		notificationID = c.Some(string(input.NotificationID.Value))
	}
	tag, err := r.db.Exec(
		ctx,
		`UPDATE reminder SET
			state = $2,
			last_sent_on = $3,
			last_sent_at = $4,
			last_confirmed_on = $5,
			streak = $6,
			longest_streak = $7,
			notification_id = $8
		WHERE id = $1
			AND state = $9
			AND last_sent_on IS NOT DISTINCT FROM $10`,
		int64(input.ID),
		input.State.String(),
		db.EncodeDate(input.LastSentOn),
		db.EncodeTime(input.LastSentAt),
		db.EncodeDate(input.LastConfirmedOn),
		int64(input.Streak),
		int64(input.LongestStreak),
		db.EncodeText(notificationID),
		input.Expected.State.String(),
		db.EncodeDate(input.Expected.LastSentOn),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgxReminderRepository) FindByNotificationID(
	ctx context.Context,
	ownerID user.ID,
	id reminder.NotificationID,
) (c.Optional[reminder.Reminder], error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+reminderColumns+` FROM reminder r
		WHERE r.owner_id = $1 AND r.notification_id = $2
		ORDER BY r.last_sent_at DESC NULLS LAST, r.id DESC
		LIMIT 1`,
		int64(ownerID),
		string(id),
	)
	return findOne(row)
}

func (r *PgxReminderRepository) FindMostRecentUnconfirmed(
	ctx context.Context,
	ownerID user.ID,
) (c.Optional[reminder.Reminder], error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+reminderColumns+` FROM reminder r
		WHERE r.owner_id = $1 AND r.state = $2
		ORDER BY r.last_sent_at DESC NULLS LAST, r.last_sent_on DESC, r.id DESC
		LIMIT 1`,
		int64(ownerID),
		reminder.StateSentUnconfirmed.String(),
	)
	return findOne(row)
}

func (r *PgxReminderRepository) ReadByOwner(ctx context.Context, ownerID user.ID) ([]reminder.Reminder, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT `+reminderColumns+` FROM reminder r WHERE r.owner_id = $1 ORDER BY r.id`,
		int64(ownerID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]reminder.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *PgxReminderRepository) Delete(ctx context.Context, id reminder.ID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminder WHERE id = $1`, int64(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return reminder.ErrReminderDoesNotExist
	}
	return nil
}

func findOne(row pgx.Row) (c.Optional[reminder.Reminder], error) {
	rem, err := scanReminder(row)
	if errors.Is(err, reminder.ErrReminderDoesNotExist) {
		return c.None[reminder.Reminder](), nil
	}
	if err != nil {
		return c.None[reminder.Reminder](), err
	}
	return c.Some(rem), nil
}

func scanReminder(row pgx.Row, extra ...interface{}) (rem reminder.Reminder, err error) {
	var (
		id, ownerID                 int64
		timeOfDay, state            string
		lastSentOn, lastConfirmedOn pgtype.Date
		lastSentAt                  pgtype.Timestamptz
		streak, longestStreak       int32
		notificationID              pgtype.Text
	)
	dest := []interface{}{
		&id, &ownerID, &timeOfDay, &rem.Label, &state,
		&lastSentOn, &lastSentAt, &lastConfirmedOn,
		&streak, &longestStreak, &notificationID, &rem.CreatedAt,
	}
	err = row.Scan(append(dest, extra...)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return rem, reminder.ErrReminderDoesNotExist
	}
	rem.ID = reminder.ID(id)
	if err != nil {
		return rem, err
	}

	rem.OwnerID = user.ID(ownerID)
	rem.TimeOfDay, err = localtime.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return rem, err
	}
	rem.State, err = reminder.ParseState(state)
	if err != nil {
		return rem, err
	}
	rem.LastSentOn = db.DecodeDate(lastSentOn)
	rem.LastSentAt = db.DecodeTime(lastSentAt)
	rem.LastConfirmedOn = db.DecodeDate(lastConfirmedOn)
	rem.Streak = uint32(streak)
	rem.LongestStreak = uint32(longestStreak)
	if text := db.DecodeText(notificationID); text.IsPresent {
		rem.NotificationID = c.Some(reminder.NotificationID(text.Value))
	}
	rem.CreatedAt = rem.CreatedAt.UTC()

	return rem, rem.Validate()
}
