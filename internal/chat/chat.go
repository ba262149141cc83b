// Package chat defines the outbound message shapes the services produce
// and the Messenger the Discord adapter implements for them.
package chat

import "context"

// Embed colours.
const (
	ColorBlue  = 0x3498db
	ColorGreen = 0x2ecc71
	ColorRed   = 0xe74c3c
	ColorGold  = 0xf1c40f
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	ImageFile   string // name of an attached file shown inside the embed
}

// AddField appends a field and returns the embed for chaining.
func (e *Embed) AddField(name, value string, inline bool) *Embed {
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: inline})
	return e
}

type Message struct {
	Content string
	Embed   *Embed
	Files   []File
}

// Text is a plain message with no embed or files.
func Text(s string) Message { return Message{Content: s} }

// Messenger delivers messages to users and channels. SendDirect returns an
// error matching common.ErrorDeliveryRefused when the user does not accept
// direct messages.
type Messenger interface {
	SendDirect(ctx context.Context, userID string, msg Message) error
	SendChannel(ctx context.Context, channelID string, msg Message) error
}
