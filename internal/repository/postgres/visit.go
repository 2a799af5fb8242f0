package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ocupmed/queue-api/internal/model"
)

const visitColumns = `
	id, patient_id, patient_name, company_name, scheduled_date,
	arrived_at, present, priority, exams,
	status_consultorio, status_sala_exames, status_coleta,
	status_audiometria, status_raio_x,
	display_position, display_room,
	created_at, updated_at
`

// roomColumn maps a room to its status column. The whitelist keeps room
// keys out of SQL string interpolation.
var roomColumn = map[model.Room]string{
	model.RoomPhysician:  "status_consultorio",
	model.RoomExam:       "status_sala_exames",
	model.RoomCollection: "status_coleta",
	model.RoomAudiometry: "status_audiometria",
	model.RoomXRay:       "status_raio_x",
}

func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	query := `
		INSERT INTO visits (
			id, patient_id, patient_name, company_name, scheduled_date,
			arrived_at, present, priority, exams,
			status_consultorio, status_sala_exames, status_coleta,
			status_audiometria, status_raio_x,
			display_position, display_room,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	if visit.ID == uuid.Nil {
		visit.ID = uuid.New()
	}
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		visit.ID,
		visit.PatientID,
		visit.PatientName,
		visit.CompanyName,
		visit.ScheduledDate,
		visit.ArrivedAt,
		visit.Present,
		visit.Priority,
		visit.Exams,
		visit.StatusPhysician,
		visit.StatusExam,
		visit.StatusCollection,
		visit.StatusAudiometry,
		visit.StatusXRay,
		visit.DisplayPosition,
		visit.DisplayRoom,
		visit.CreatedAt,
		visit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	query := `SELECT ` + visitColumns + ` FROM visits WHERE id = $1`

	var visit model.Visit
	err := r.db.GetContext(ctx, &visit, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &visit, nil
}

func (r *visitRepository) UpdateExamRouting(ctx context.Context, id uuid.UUID, exams []string, statuses map[model.Room]model.RoomStatus) error {
	query := `
		UPDATE visits
		SET exams = $1,
			status_consultorio = $2,
			status_sala_exames = $3,
			status_coleta = $4,
			status_audiometria = $5,
			status_raio_x = $6,
			updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		pq.StringArray(exams),
		statuses[model.RoomPhysician],
		statuses[model.RoomExam],
		statuses[model.RoomCollection],
		statuses[model.RoomAudiometry],
		statuses[model.RoomXRay],
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update exam routing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("visit not found")
	}
	return nil
}

func (r *visitRepository) CheckIn(ctx context.Context, id uuid.UUID, arrivedAt time.Time) error {
	query := `
		UPDATE visits
		SET arrived_at = $1, present = true, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, arrivedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to check in visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("visit not found")
	}
	return nil
}

func (r *visitRepository) ListActive(ctx context.Context, date time.Time) ([]*model.Visit, error) {
	query := `SELECT ` + visitColumns + `
		FROM visits
		WHERE scheduled_date = $1
		AND present = true
		AND (
			status_consultorio IN ('waiting', 'in_progress')
			OR status_sala_exames IN ('waiting', 'in_progress')
			OR status_coleta IN ('waiting', 'in_progress')
			OR status_audiometria IN ('waiting', 'in_progress')
			OR status_raio_x IN ('waiting', 'in_progress')
		)
		ORDER BY priority DESC, arrived_at ASC NULLS LAST
	`
	var visits []*model.Visit
	err := r.db.SelectContext(ctx, &visits, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active visits: %w", err)
	}
	return visits, nil
}

func (r *visitRepository) ListCalled(ctx context.Context, date time.Time, limit int) ([]*model.Visit, error) {
	query := `SELECT ` + visitColumns + `
		FROM visits
		WHERE scheduled_date = $1
		AND display_position IS NOT NULL
		ORDER BY display_position ASC
		LIMIT $2
	`
	var visits []*model.Visit
	err := r.db.SelectContext(ctx, &visits, query, date, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list called visits: %w", err)
	}
	return visits, nil
}

// ClaimRoom folds both concurrency invariants into one conditional
// update: the row condition rejects a visit already in progress
// elsewhere, and the NOT EXISTS rejects an occupied room. Either way a
// losing claim matches zero rows.
func (r *visitRepository) ClaimRoom(ctx context.Context, id uuid.UUID, room model.Room, date time.Time) (bool, error) {
	column, ok := roomColumn[room]
	if !ok {
		return false, fmt.Errorf("unknown room: %s", room)
	}

	query := fmt.Sprintf(`
		UPDATE visits
		SET %s = 'in_progress', updated_at = $1
		WHERE id = $2
		AND %s = 'waiting'
		AND status_consultorio != 'in_progress'
		AND status_sala_exames != 'in_progress'
		AND status_coleta != 'in_progress'
		AND status_audiometria != 'in_progress'
		AND status_raio_x != 'in_progress'
		AND NOT EXISTS (
			SELECT 1 FROM visits v2
			WHERE v2.scheduled_date = $3 AND v2.%s = 'in_progress'
		)
	`, column, column, column)

	result, err := r.db.ExecContext(ctx, query, time.Now(), id, date)
	if err != nil {
		return false, fmt.Errorf("failed to claim room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *visitRepository) CompareAndSetRoomStatus(ctx context.Context, id uuid.UUID, room model.Room, from, to model.RoomStatus) (bool, error) {
	column, ok := roomColumn[room]
	if !ok {
		return false, fmt.Errorf("unknown room: %s", room)
	}

	query := fmt.Sprintf(`
		UPDATE visits
		SET %s = $1, updated_at = $2
		WHERE id = $3 AND %s = $4
	`, column, column)

	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update room status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *visitRepository) RoomOccupied(ctx context.Context, room model.Room, date time.Time) (bool, error) {
	column, ok := roomColumn[room]
	if !ok {
		return false, fmt.Errorf("unknown room: %s", room)
	}

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM visits
			WHERE scheduled_date = $1 AND %s = 'in_progress'
		)
	`, column)

	var occupied bool
	err := r.db.GetContext(ctx, &occupied, query, date)
	if err != nil {
		return false, fmt.Errorf("failed to check room occupancy: %w", err)
	}
	return occupied, nil
}

// PromoteDisplaySlot demotes every called visit of the day by one
// position and takes position 1, in one transaction, so the display
// never sees two visits sharing a slot.
func (r *visitRepository) PromoteDisplaySlot(ctx context.Context, id uuid.UUID, date time.Time, roomLabel string) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		shift := `
			UPDATE visits
			SET display_position = display_position + 1
			WHERE scheduled_date = $1 AND display_position IS NOT NULL
		`
		if _, err := tx.ExecContext(ctx, shift, date); err != nil {
			return fmt.Errorf("failed to shift display slots: %w", err)
		}

		assign := `
			UPDATE visits
			SET display_position = 1, display_room = $1, updated_at = $2
			WHERE id = $3
		`
		result, err := tx.ExecContext(ctx, assign, roomLabel, time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to assign display slot: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
