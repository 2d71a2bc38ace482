// Copyright 2026 The Filament Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ChannelID identifies a Discord channel. Snowflakes are 64-bit
// unsigned integers that Discord transmits as decimal strings.
type ChannelID uint64

// ParseChannelID parses the decimal string form of a channel ID.
func ParseChannelID(s string) (ChannelID, error) {
	id, err := parseSnowflake(s)
	return ChannelID(id), err
}

func (id ChannelID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// RecordID identifies a stored record (a Discord message or
// attachment snowflake). The zero value means "no record" and never
// collides with a real ID.
type RecordID uint64

// ParseRecordID parses the decimal string form of a record ID.
func ParseRecordID(s string) (RecordID, error) {
	id, err := parseSnowflake(s)
	return RecordID(id), err
}

func (id RecordID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// MarshalJSON encodes the ID as a decimal string, the form Discord's
// API produces and consumes.
func (id RecordID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes the decimal string form used by Discord's API.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("record ID must be a JSON string: %w", err)
	}
	parsed, err := ParseRecordID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseSnowflake(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	return id, nil
}

// Record is one stored record: a message's ID, its text content, and
// its attachments in upload order.
type Record struct {
	ID          RecordID     `json:"id"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment describes one file carried by a record. URL points at
// Discord's CDN and is fetched with [Store.FetchAttachment].
type Attachment struct {
	ID       RecordID `json:"id"`
	Filename string   `json:"filename"`
	Size     int64    `json:"size"`
	URL      string   `json:"url"`
}

// FileUpload names one file part of a record create. The reader is
// consumed while the request body is built.
type FileUpload struct {
	Name   string
	Reader io.Reader
}
