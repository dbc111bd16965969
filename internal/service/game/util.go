package game

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// 提示的 ID 由提交时刻派生
func newClueID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic("Failed to marshal: " + err.Error())
	}

	return data
}
