// Package teletest provides a recording tele.Context for handler tests.
package teletest

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Sent captures one outbound call made through the context.
type Sent struct {
	What any
	Opts []any
}

// Text returns the payload when it was a plain string.
func (s Sent) Text() string {
	text, _ := s.What.(string)
	return text
}

// Markup returns the reply markup passed with the call, if any.
func (s Sent) Markup() *tele.ReplyMarkup {
	for _, o := range s.Opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			return v
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return v.ReplyMarkup
			}
		}
	}
	return nil
}

// Context is a fake tele.Context. Methods not overridden here panic through
// the nil embedded interface, which flags unexpected calls in tests.
type Context struct {
	tele.Context

	mu     sync.Mutex
	update tele.Update
	store  map[string]any
	sent   []Sent
	albums []tele.Album

	// SendErr, when set, decides the result of each Send call.
	SendErr func(what any) error
	// AlbumErr is returned by every SendAlbum call.
	AlbumErr error
}

// NewContext builds a private-chat text message update from userID.
func NewContext(userID int64, text string) *Context {
	user := &tele.User{ID: userID, Username: "tester", LanguageCode: "uz"}
	msg := &tele.Message{
		ID:     1,
		Text:   text,
		Sender: user,
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
	}
	return &Context{
		update: tele.Update{ID: 1, Message: msg},
		store:  make(map[string]any),
	}
}

// WithPhoto attaches a photo with the given file id and clears the text.
func (c *Context) WithPhoto(fileID string) *Context {
	c.update.Message.Text = ""
	c.update.Message.Photo = &tele.Photo{File: tele.File{FileID: fileID}}
	return c
}

// WithContact attaches a shared contact and clears the text.
func (c *Context) WithContact(phone string) *Context {
	c.update.Message.Text = ""
	c.update.Message.Contact = &tele.Contact{PhoneNumber: phone, UserID: c.update.Message.Sender.ID}
	return c
}

// WithLocation attaches a geo point and clears the text.
func (c *Context) WithLocation(lat, lng float32) *Context {
	c.update.Message.Text = ""
	c.update.Message.Location = &tele.Location{Lat: lat, Lng: lng}
	return c
}

// WithDocument attaches a document and clears the text.
func (c *Context) WithDocument(name string) *Context {
	c.update.Message.Text = ""
	c.update.Message.Document = &tele.Document{File: tele.File{FileID: "doc"}, FileName: name}
	return c
}

func (c *Context) Update() tele.Update    { return c.update }
func (c *Context) Message() *tele.Message { return c.update.Message }
func (c *Context) Sender() *tele.User     { return c.update.Message.Sender }
func (c *Context) Chat() *tele.Chat       { return c.update.Message.Chat }
func (c *Context) Recipient() tele.Recipient {
	return c.update.Message.Chat
}

func (c *Context) Text() string {
	if c.update.Message.Photo != nil {
		return c.update.Message.Caption
	}
	return c.update.Message.Text
}

func (c *Context) Send(what any, opts ...any) error {
	c.mu.Lock()
	fn := c.SendErr
	c.mu.Unlock()
	if fn != nil {
		if err := fn(what); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) Reply(what any, opts ...any) error {
	return c.Send(what, opts...)
}

func (c *Context) SendAlbum(a tele.Album, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.AlbumErr != nil {
		return c.AlbumErr
	}
	c.albums = append(c.albums, a)
	return nil
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = val
}

// Sent returns a copy of every recorded Send call.
func (c *Context) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// Texts returns the string payloads of recorded Send calls.
func (c *Context) Texts() []string {
	var out []string
	for _, s := range c.Sent() {
		if t := s.Text(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Last returns the most recent Send call.
func (c *Context) Last() Sent {
	sent := c.Sent()
	if len(sent) == 0 {
		return Sent{}
	}
	return sent[len(sent)-1]
}

// Albums returns a copy of every delivered album.
func (c *Context) Albums() []tele.Album {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]tele.Album(nil), c.albums...)
}

// Reset drops recorded calls and keeps context values.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
	c.albums = nil
}

// Next returns a fresh context for the same user carrying text.
// Stored values are not carried over, as with a real new update.
func (c *Context) Next(text string) *Context {
	n := NewContext(c.update.Message.Sender.ID, text)
	n.update.ID = c.update.ID + 1
	n.SendErr = c.SendErr
	n.AlbumErr = c.AlbumErr
	return n
}
