package booking

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Schedule は検証済みの予約時間帯を表す
type Schedule struct {
	Date      string // yyyy-mm-dd
	StartTime string // HH:mm
	EndTime   string // HH:mm
	Duration  int    // 時間単位
}

// NewScheduleFromEndTime は終了時刻の指定からスケジュールを作成する
// 利用時間は時の差分のみで計算される（分単位の粒度はサポートしない）
func NewScheduleFromEndTime(date, startTime, endTime string, now time.Time) (Schedule, error) {
	startHour, _, err := validateDateAndStart(date, startTime, now)
	if err != nil {
		return Schedule{}, err
	}
	end, err := time.Parse(timeLayout, endTime)
	if err != nil {
		return Schedule{}, ErrInvalidTime
	}
	duration := end.Hour() - startHour
	if duration <= 0 {
		return Schedule{}, ErrInvalidDuration
	}
	return Schedule{Date: date, StartTime: startTime, EndTime: endTime, Duration: duration}, nil
}

// NewScheduleFromDuration は開始時刻と利用時間の指定からスケジュールを作成する
// 終了時刻が翌日に跨る場合はエラーとなる（日付を跨ぐ予約はサポートしない）
func NewScheduleFromDuration(date, startTime string, hours int, now time.Time) (Schedule, error) {
	startHour, startMin, err := validateDateAndStart(date, startTime, now)
	if err != nil {
		return Schedule{}, err
	}
	if hours < 1 {
		return Schedule{}, ErrInvalidDuration
	}
	endHour := startHour + hours
	// 24:00ちょうどで終わる場合のみ許可する（24:30等は翌日に食い込む）
	if endHour > 24 || (endHour == 24 && startMin > 0) {
		return Schedule{}, ErrDurationExceedsDay
	}
	endTime := fmt.Sprintf("%02d:%02d", endHour, startMin)
	return Schedule{Date: date, StartTime: startTime, EndTime: endTime, Duration: hours}, nil
}

// validateDateAndStart は日付と開始時刻を検証し、開始時・分を返す
func validateDateAndStart(date, startTime string, now time.Time) (int, int, error) {
	d, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return 0, 0, ErrInvalidDate
	}
	start, err := time.Parse(timeLayout, startTime)
	if err != nil {
		return 0, 0, ErrInvalidTime
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return 0, 0, ErrDateInPast
	}
	if d.Equal(today) {
		nowMinutes := now.Hour()*60 + now.Minute()
		startMinutes := start.Hour()*60 + start.Minute()
		if startMinutes < nowMinutes {
			return 0, 0, ErrStartTimeInPast
		}
	}
	return start.Hour(), start.Minute(), nil
}
