package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/jobs"
)

// formOverhead is the allowance for multipart boundaries, form fields and
// JSON framing on top of the manuscript itself.
const formOverhead = 1 << 20

// multipartMemory is how much of an upload is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// jsonSubmission is the JSON form of a print job submission. DOCX content
// is base64 encoded.
type jsonSubmission struct {
	Content    string `json:"content"`
	SourceKind string `json:"sourceKind"`
	Format     string `json:"format"`
	Font       string `json:"font"`
	Title      string `json:"title"`
	SourceURL  string `json:"sourceUrl"`
}

// readSubmission decodes a multipart or JSON submission into a job request.
func (s *Server) readSubmission(w http.ResponseWriter, r *http.Request) (jobs.Request, error) {
	// base64 DOCX in JSON grows by a third.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload/3*4+formOverhead)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil && r.Header.Get("Content-Type") != "" {
		return jobs.Request{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	switch mediaType {
	case "multipart/form-data":
		return s.readMultipart(r)
	case "application/json", "":
		return s.readJSON(r)
	}
	return jobs.Request{}, fmt.Errorf("%w: unsupported content type %q", ErrBadRequest, mediaType)
}

func (s *Server) readMultipart(r *http.Request) (jobs.Request, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return jobs.Request{}, bodyError(err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("manuscript")
	if err != nil {
		return jobs.Request{}, fmt.Errorf("%w: %v", ErrMissingUpload, err)
	}
	defer func() { _ = file.Close() }()

	content, err := s.readLimited(file)
	if err != nil {
		return jobs.Request{}, err
	}

	var kind typeset.SourceKind
	if name := r.FormValue("sourceKind"); name != "" {
		kind, err = typeset.ParseSourceKind(name)
	} else {
		kind, err = typeset.SourceKindFromPath(header.Filename)
	}
	if err != nil {
		return jobs.Request{}, err
	}

	return s.buildRequest(content, kind, r.FormValue("format"), r.FormValue("font"), r.FormValue("title"))
}

func (s *Server) readJSON(r *http.Request) (jobs.Request, error) {
	var sub jsonSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		return jobs.Request{}, bodyError(err)
	}
	if sub.Content != "" && sub.SourceURL != "" {
		return jobs.Request{}, fmt.Errorf("%w: content and sourceUrl are mutually exclusive", ErrBadRequest)
	}

	kind, err := jsonSourceKind(sub)
	if err != nil {
		return jobs.Request{}, err
	}

	var content []byte
	switch {
	case sub.SourceURL != "":
		if content, err = s.fetchSource(r.Context(), sub.SourceURL); err != nil {
			return jobs.Request{}, err
		}
	case kind == typeset.SourceDOCX:
		if content, err = base64.StdEncoding.DecodeString(sub.Content); err != nil {
			return jobs.Request{}, fmt.Errorf("%w: docx content must be base64: %v", ErrBadRequest, err)
		}
	default:
		content = []byte(sub.Content)
	}
	if int64(len(content)) > s.maxUpload {
		return jobs.Request{}, ErrSourceTooBig
	}

	req, err := s.buildRequest(content, kind, sub.Format, sub.Font, sub.Title)
	req.SourceURL = sub.SourceURL
	return req, err
}

// jsonSourceKind takes the explicit sourceKind, then the sourceUrl
// extension, then plain text.
func jsonSourceKind(sub jsonSubmission) (typeset.SourceKind, error) {
	if sub.SourceKind != "" {
		return typeset.ParseSourceKind(sub.SourceKind)
	}
	if sub.SourceURL != "" {
		if u, err := url.Parse(sub.SourceURL); err == nil {
			if kind, err := typeset.SourceKindFromPath(u.Path); err == nil {
				return kind, nil
			}
		}
	}
	return typeset.SourceText, nil
}

// buildRequest applies the server defaults for format and font.
func (s *Server) buildRequest(content []byte, kind typeset.SourceKind, format, font, title string) (jobs.Request, error) {
	req := jobs.Request{
		Content: content,
		Source:  kind,
		Format:  s.format,
		Font:    strings.TrimSpace(font),
		Title:   strings.TrimSpace(title),
	}
	if format != "" {
		f, err := typeset.ParseFormat(format)
		if err != nil {
			return jobs.Request{}, err
		}
		req.Format = f
	}
	if req.Font == "" {
		req.Font = s.font
	}
	return req, nil
}

// fetchSource downloads a manuscript over HTTP(S). Non-public hosts are
// refused unless WithPrivateSources is set.
func (s *Server) fetchSource(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: sourceUrl must be an absolute http(s) URL", ErrBadRequest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrForbiddenSource) {
			return nil, fmt.Errorf("%w: %s", ErrForbiddenSource, u.Host)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchSource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetchSource, u.Host, resp.StatusCode)
	}

	data, err := s.readLimited(resp.Body)
	if err != nil && !errors.Is(err, ErrSourceTooBig) {
		return nil, fmt.Errorf("%w: %v", ErrFetchSource, err)
	}
	return data, err
}

// readLimited reads at most maxUpload bytes.
func (s *Server) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("reading manuscript: %w", err)
	}
	if int64(len(data)) > s.maxUpload {
		return nil, ErrSourceTooBig
	}
	return data, nil
}

// bodyError classifies a request body read failure.
func bodyError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Errorf("%w: %w", ErrSourceTooBig, err)
	}
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}
