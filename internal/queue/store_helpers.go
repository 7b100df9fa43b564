package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, source_path, rel_path, track_id, title, status, sample_rate, channels, duration_seconds, key_label, camelot_label, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id              int64
		sourcePath      sql.NullString
		relPath         string
		trackID         sql.NullString
		title           sql.NullString
		statusStr       string
		sampleRate      sql.NullInt64
		channels        sql.NullInt64
		duration        sql.NullFloat64
		keyLabel        sql.NullString
		camelotLabel    sql.NullString
		errorMessage    sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&relPath,
		&trackID,
		&title,
		&statusStr,
		&sampleRate,
		&channels,
		&duration,
		&keyLabel,
		&camelotLabel,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		SourcePath:      sourcePath.String,
		RelPath:         relPath,
		TrackID:         trackID.String,
		Title:           title.String,
		Status:          Status(statusStr),
		SampleRate:      int(sampleRate.Int64),
		Channels:        int(channels.Int64),
		DurationSeconds: duration.Float64,
		KeyLabel:        keyLabel.String,
		CamelotLabel:    camelotLabel.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
