package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
)

const maxBodyBytes = 1 << 20

// decodeRequest читает тело как JSON или как HTML-форму
// (application/x-www-form-urlencoded, multipart/form-data).
// Поля формы сопоставляются с json-тегами dst.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
				return fmt.Errorf("parse form: %w", err)
			}
		} else if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		fields := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			fields[k] = r.PostForm.Get(k)
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dst)
	default:
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("decode JSON body: %w", err)
		}
		if dec.More() {
			return errors.New("decode JSON body: unexpected data after object")
		}
		return nil
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type updatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
