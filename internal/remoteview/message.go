package remoteview

import (
	"fmt"
	"strings"

	"github.com/roach88/livestyle/internal/model"
)

// Notice names produced by DeriveMessage.
const (
	NoticeConnecting  Notice = "connecting"
	NoticeNoApp       Notice = "no-app"
	NoticeNoOrigin    Notice = "no-origin"
	NoticeUnavailable Notice = "unavailable"
	NoticeDefault     Notice = "default"
)

// Structured message names.
const (
	NameConnected = "connected"
	NameError     = "error"
)

// Upstream error codes with a dedicated notice.
const (
	CodeNoApp         = "ENOAPP"
	CodeNoOrigin      = "ERVNOORIGIN"
	CodeInvalidOrigin = "ERVINVALIDORIGIN"
)

const localHost = "http://livestyle/"

// Message is an entry of the remote-view message queue. Messages with the
// same name are duplicates.
type Message interface {
	Name() string
}

// Notice is a plain message; it is its own name.
type Notice string

// Name implements Message.
func (n Notice) Name() string { return string(n) }

// Connected describes an established remote-view session.
type Connected struct {
	Origin    string
	LocalURL  string
	PublicURL string
	PublicID  string
}

// Name implements Message.
func (Connected) Name() string { return NameConnected }

// Failure is an upstream error without a dedicated notice.
type Failure struct {
	Code    string
	Message string
}

// Name implements Message.
func (Failure) Name() string { return NameError }

// DeriveMessage returns the message describing the remote-view session of m.
func DeriveMessage(m *model.Model) Message {
	if m == nil {
		return NoticeDefault
	}
	rv := m.RemoteView
	switch rv.State {
	case model.StatePending:
		return NoticeConnecting
	case model.StateConnected:
		return Connected{
			Origin:    m.Origin,
			LocalURL:  LocalURL(m.Origin, m.URL),
			PublicURL: "http://" + rv.PublicID,
			PublicID:  rv.PublicID,
		}
	case model.StateError:
		var code, msg string
		if rv.Error != nil {
			code, msg = rv.Error.Code, rv.Error.Message
		}
		switch code {
		case CodeNoApp:
			return NoticeNoApp
		case CodeNoOrigin:
			return NoticeNoOrigin
		case CodeInvalidOrigin:
			return NoticeUnavailable
		}
		return Failure{Code: code, Message: msg}
	}
	return NoticeDefault
}

// LocalURL rewrites a file: page URL under origin into a synthetic
// http://livestyle/ URL made of the path segments after the origin. Other
// URLs are returned unchanged.
func LocalURL(origin, url string) string {
	if !strings.HasPrefix(url, "file:") || !strings.HasPrefix(url, origin) {
		return url
	}
	segments := strings.FieldsFunc(url[len(origin):], func(r rune) bool {
		return r == '/' || r == '\\'
	})
	return localHost + strings.Join(segments, "/")
}

// Encode returns the document form of m: a string for notices, a map for
// structured messages.
func Encode(m Message) any {
	switch m := m.(type) {
	case Notice:
		return string(m)
	case Connected:
		return map[string]any{
			"name":      NameConnected,
			"origin":    m.Origin,
			"localUrl":  m.LocalURL,
			"publicUrl": m.PublicURL,
			"publicId":  m.PublicID,
		}
	case Failure:
		return map[string]any{
			"name":    NameError,
			"code":    m.Code,
			"message": m.Message,
		}
	case nil:
		return nil
	}
	return m.Name()
}

// Decode is the inverse of Encode. It accepts the maps produced by YAML and
// JSON decoders.
func Decode(v any) (Message, error) {
	switch v := v.(type) {
	case string:
		return Notice(v), nil
	case map[string]any:
		return decodeFields(v)
	case map[any]any:
		fields := make(map[string]any, len(v))
		for k, val := range v {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("message key %v is not a string", k)
			}
			fields[key] = val
		}
		return decodeFields(fields)
	case nil:
		return nil, fmt.Errorf("message is missing")
	}
	return nil, fmt.Errorf("message has unsupported type %T", v)
}

func decodeFields(fields map[string]any) (Message, error) {
	str := func(key string) (string, error) {
		switch s := fields[key].(type) {
		case nil:
			return "", nil
		case string:
			return s, nil
		default:
			return "", fmt.Errorf("message field %q must be a string, got %T", key, s)
		}
	}
	name, err := str("name")
	if err != nil {
		return nil, err
	}
	switch name {
	case NameConnected:
		var c Connected
		for key, dst := range map[string]*string{
			"origin": &c.Origin, "localUrl": &c.LocalURL, "publicUrl": &c.PublicURL, "publicId": &c.PublicID,
		} {
			if *dst, err = str(key); err != nil {
				return nil, err
			}
		}
		return c, nil
	case NameError:
		var f Failure
		if f.Code, err = str("code"); err != nil {
			return nil, err
		}
		if f.Message, err = str("message"); err != nil {
			return nil, err
		}
		return f, nil
	case "":
		return nil, fmt.Errorf("structured message has no name")
	}
	return nil, fmt.Errorf("unknown structured message %q", name)
}
