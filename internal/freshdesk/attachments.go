package freshdesk

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/psds-microservice/tracker-service/internal/errs"
	"github.com/psds-microservice/tracker-service/internal/metrics"
	"github.com/psds-microservice/tracker-service/internal/model"
)

const defaultFileType = "application/octet-stream"

// NoteUpload: вложение, добавляемое к тикету заметкой.
type NoteUpload struct {
	TicketID    int64  `json:"ticketId"`
	NoteBody    string `json:"noteBody,omitempty"`
	IsPrivate   bool   `json:"isPrivate"`
	FileContent string `json:"fileContent"`
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType,omitempty"`
}

// TicketUpload: новый тикет вместе с файлами одним multipart-запросом.
type TicketUpload struct {
	Ticket      map[string]interface{} `json:"ticket"`
	Attachments []model.Attachment     `json:"attachments,omitempty"`
}

// UploadResult: ответ Freshdesk на загрузку.
type UploadResult struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// UploadAttachment отправляет один файл в /tickets/{id}/notes.
func (c *Client) UploadAttachment(ctx context.Context, up NoteUpload) (*UploadResult, error) {
	if up.TicketID == 0 || up.FileContent == "" || up.FileName == "" {
		return nil, fmt.Errorf("%w: missing required fields: ticketId, fileContent, or fileName", errs.ErrInvalidUpload)
	}
	content, err := base64.StdEncoding.DecodeString(up.FileContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidUpload, up.FileName, err)
	}
	note := up.NoteBody
	if note == "" {
		note = "Attachment: " + up.FileName
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("body", note)
	_ = w.WriteField("private", strconv.FormatBool(up.IsPrivate))
	if err := writeFile(w, up.FileName, up.FileType, content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("freshdesk: multipart: %w", err)
	}

	path := fmt.Sprintf("/api/v2/tickets/%d/notes", up.TicketID)
	return c.upload(ctx, "uploadAttachment", path, w.FormDataContentType(), &buf, 1)
}

// UploadTicketWithAttachments создаёт тикет с файлами. Custom fields уходят
// как custom_fields[key], списки как key[].
func (c *Client) UploadTicketWithAttachments(ctx context.Context, up TicketUpload) (*UploadResult, error) {
	if up.Ticket == nil {
		return nil, fmt.Errorf("%w: missing required parameter (ticketData)", errs.ErrInvalidUpload)
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(up.Ticket))
	for k := range up.Ticket {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writeTicketField(w, k, up.Ticket[k]); err != nil {
			return nil, err
		}
	}
	for _, a := range up.Attachments {
		content, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrInvalidUpload, a.Name, err)
		}
		if err := writeFile(w, a.Name, a.ContentType, content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("freshdesk: multipart: %w", err)
	}
	return c.upload(ctx, "uploadTicketWithAttachments", "/api/v2/tickets", w.FormDataContentType(), &buf, len(up.Attachments))
}

func (c *Client) upload(ctx context.Context, name, path, contentType string, body *bytes.Buffer, files int) (*UploadResult, error) {
	resp, err := c.do(ctx, name, http.MethodPost, path, contentType, body)
	if err != nil {
		return nil, err
	}
	metrics.AttachmentsUploaded.Add(float64(files))
	raw := json.RawMessage(resp.Response)
	if !json.Valid(raw) {
		// Ответ не в JSON оборачивается, результат всегда валидный JSON.
		raw, _ = json.Marshal(map[string]string{"message": resp.Response})
	}
	return &UploadResult{Status: resp.Status, Body: raw}, nil
}

func writeFile(w *multipart.Writer, name, fileType string, content []byte) error {
	if fileType == "" {
		fileType = defaultFileType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachments[]"; filename="%s"`, escapeQuotes(name)))
	h.Set("Content-Type", fileType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("freshdesk: multipart part %s: %w", name, err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("freshdesk: multipart write %s: %w", name, err)
	}
	return nil
}

func writeTicketField(w *multipart.Writer, key string, v interface{}) error {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		names := make([]string, 0, len(val))
		for k := range val {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			if val[k] == nil {
				continue
			}
			if err := w.WriteField(key+"["+k+"]", formValue(val[k])); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, item := range val {
			if err := w.WriteField(key+"[]", formValue(item)); err != nil {
				return err
			}
		}
	case []string:
		for _, item := range val {
			if err := w.WriteField(key+"[]", item); err != nil {
				return err
			}
		}
	default:
		return w.WriteField(key, formValue(val))
	}
	return nil
}

func formValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
