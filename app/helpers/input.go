package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Rakhulsr/techstore-api/app/utils/storage"
)

// MaxMultipartMemory is the part of a multipart body kept in memory; the
// rest spills to temp files.
const MaxMultipartMemory = 8 << 20

// Input is a flattened view over a JSON or form request body. Values are
// trimmed and empty strings become null, so "absent" and "null" both read
// back as a nil pointer.
type Input struct {
	values map[string]*string
	files  map[string]*multipart.FileHeader
}

func ParseInput(r *http.Request) (*Input, error) {
	in := &Input{values: make(map[string]*string), files: make(map[string]*multipart.FileHeader)}
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.HasPrefix(contentType, "application/json"):
		raw := make(map[string]any)
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("malformed JSON body: %w", err)
		}
		for k, v := range raw {
			in.set(k, v)
		}
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(MaxMultipartMemory); err != nil {
			return nil, fmt.Errorf("malformed multipart body: %w", err)
		}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				in.set(k, vs[0])
			}
		}
		for k, fhs := range r.MultipartForm.File {
			if len(fhs) > 0 {
				in.files[k] = fhs[0]
			}
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("malformed form body: %w", err)
		}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				in.set(k, vs[0])
			}
		}
	}
	return in, nil
}

func (in *Input) set(key string, v any) {
	var s string
	switch val := v.(type) {
	case nil:
		in.values[key] = nil
		return
	case string:
		s = val
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		s = strconv.Itoa(val)
	case bool:
		s = strconv.FormatBool(val)
	default:
		b, _ := json.Marshal(val)
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		in.values[key] = nil
		return
	}
	in.values[key] = &s
}

// Has reports whether the key was sent at all, even as null.
func (in *Input) Has(key string) bool {
	_, ok := in.values[key]
	return ok
}

// Bind copies values into the *string fields of the struct dst points to,
// matching on the json tag.
func (in *Input) Bind(dst any) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	strPtr := reflect.TypeOf((*string)(nil))
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.Type != strPtr || !rv.Field(i).CanSet() {
			continue
		}
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		if v := in.values[name]; v != nil {
			val := *v
			rv.Field(i).Set(reflect.ValueOf(&val))
		}
	}
}

// Upload opens the file sent under key. The caller must invoke the returned
// close func once the content has been consumed.
func (in *Input) Upload(key string) (*storage.Upload, func(), error) {
	fh := in.files[key]
	if fh == nil {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to open upload %s: %w", key, err)
	}
	return &storage.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}, func() { _ = f.Close() }, nil
}

// ParseBool accepts the usual form encodings of a boolean.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
