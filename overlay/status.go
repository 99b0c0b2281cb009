package overlay

import (
	"errors"
	"fmt"

	"github.com/UnownHash/Coastline/nominatim"
)

type State int

const (
	StateIdle State = iota
	StateSearching
	StateRendered
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateRendered:
		return "rendered"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for _, state := range []State{StateIdle, StateSearching, StateRendered, StateFailed} {
		if state.String() == string(b) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown state '%s'", string(b))
}

type StatusKind string

const (
	StatusInitial             StatusKind = "initial"
	StatusLoading             StatusKind = "loading"
	StatusInvalidInput        StatusKind = "invalid_input"
	StatusRendered            StatusKind = "rendered"
	StatusLookupFailed        StatusKind = "lookup_failed"
	StatusNotFound            StatusKind = "not_found"
	StatusCleared             StatusKind = "cleared"
	StatusLocating            StatusKind = "locating"
	StatusLocated             StatusKind = "located"
	StatusGeolocationFailed   StatusKind = "geolocation_failed"
	StatusGeolocationDenied   StatusKind = "geolocation_denied"
	StatusPositionUnavailable StatusKind = "position_unavailable"
	StatusGeolocationTimeout  StatusKind = "geolocation_timeout"
	StatusUnsupported         StatusKind = "geolocation_unsupported"
)

// Status is the single line shown to the user.
type Status struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
	IsError bool       `json:"is_error"`
}

const (
	CENTER_MARKER_POPUP   = "中心点"
	LOCATION_MARKER_POPUP = "現在地"

	mainlandOnlySuffix = "（メインランドのみ）"
)

func newStatus(kind StatusKind, message string, isError bool) Status {
	return Status{Kind: kind, Message: message, IsError: isError}
}

func initialStatus() Status {
	return newStatus(StatusInitial, "国名または島名を入力して「表示」ボタンをクリックしてください", false)
}

func loadingStatus() Status {
	return newStatus(StatusLoading, "海岸線データを読み込み中...", false)
}

func invalidInputStatus() Status {
	return newStatus(StatusInvalidInput, "国名または島名を入力してください", true)
}

func renderedStatus(displayName string, mainlandOnly bool) Status {
	msg := displayName + "の海岸線を表示しました"
	if mainlandOnly {
		msg += mainlandOnlySuffix
	}
	return newStatus(StatusRendered, msg, false)
}

func clearedStatus() Status {
	return newStatus(StatusCleared, "表示をクリアしました", false)
}

func locatingStatus() Status {
	return newStatus(StatusLocating, "現在地を取得中...", false)
}

func locatedStatus() Status {
	return newStatus(StatusLocated, "現在地に移動しました", false)
}

// searchFailureStatus maps a lookup error to what the user sees.
func searchFailureStatus(err error) Status {
	if errors.Is(err, nominatim.ErrNotFound) {
		return newStatus(StatusNotFound, "エラー: 見つかりません", true)
	}
	return newStatus(StatusLookupFailed, "エラー: データの取得に失敗しました", true)
}

func locateFailureStatus(err error) Status {
	switch {
	case errors.Is(err, ErrGeolocationUnsupported):
		return newStatus(StatusUnsupported, "お使いのブラウザは位置情報に対応していません", true)
	case errors.Is(err, ErrPermissionDenied):
		return newStatus(StatusGeolocationDenied, "位置情報の使用が許可されていません", true)
	case errors.Is(err, ErrPositionUnavailable):
		return newStatus(StatusPositionUnavailable, "位置情報が利用できません", true)
	case errors.Is(err, ErrGeolocationTimeout):
		return newStatus(StatusGeolocationTimeout, "位置情報の取得がタイムアウトしました", true)
	}
	return newStatus(StatusGeolocationFailed, "位置情報の取得に失敗しました", true)
}
