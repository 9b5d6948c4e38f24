package books

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The books backend is a legacy PHP API: every operation is a
// form-encoded POST selected by an `action` query parameter, and every
// response is the envelope {status: bool, dataset | error}. When
// status is false the error string is surfaced to the user verbatim.

const (
	booksEndpoint    = "libros.php"
	commentsEndpoint = "comentarios.php"

	actionReadOne        = "readOne"
	actionReadOneComment = "readOneComment"
	actionCreateRow      = "createRow"
)

// RemoteError is a status=false reply. Message is shown as-is.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

type envelope struct {
	Status  bool            `json:"status"`
	Dataset json.RawMessage `json:"dataset"`
	Error   string          `json:"error"`
}

// BookDetail mirrors the backend's dataset for a single book.
type BookDetail struct {
	ID          string          `json:"id_libro"`
	Title       string          `json:"titulo_libro"`
	Description string          `json:"descripcion_libro"`
	Price       decimal.Decimal `json:"precio_libro"`
	Image       string          `json:"imagen_libro"`
}

// BookComment mirrors one comment row.
type BookComment struct {
	AuthorName string      `json:"nombre_usuario"`
	Body       string      `json:"comentario"`
	Rating     json.Number `json:"calificacion"`
}

// RatingValue tolerates the backend returning ratings as either a
// number or a numeric string.
func (c BookComment) RatingValue() int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Rating.String()))
	if err != nil {
		return 0
	}
	return n
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given API base URL. A nil
// httpClient falls back to http.DefaultClient; callers wanting a
// timeout inject their own.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) ReadOne(ctx context.Context, bookID string) (BookDetail, error) {
	form := url.Values{}
	form.Set("idLibro", bookID)

	var detail BookDetail
	if err := c.post(ctx, booksEndpoint, actionReadOne, form, &detail); err != nil {
		return BookDetail{}, err
	}
	return detail, nil
}

func (c *Client) ReadComments(ctx context.Context, bookID string) ([]BookComment, error) {
	form := url.Values{}
	form.Set("id_libro", bookID)

	var comments []BookComment
	if err := c.post(ctx, commentsEndpoint, actionReadOneComment, form, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, bookID, body string, rating int) error {
	form := url.Values{}
	form.Set("id_libro", bookID)
	form.Set("comentario", body)
	form.Set("calificacion", strconv.Itoa(rating))

	return c.post(ctx, commentsEndpoint, actionCreateRow, form, nil)
}

func (c *Client) post(ctx context.Context, endpoint, action string, form url.Values, out any) error {
	reqURL := fmt.Sprintf("%s/%s?action=%s", c.baseURL, endpoint, action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling books api: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding books api response: %w", err)
	}

	if !env.Status {
		return &RemoteError{Message: env.Error}
	}

	if out != nil {
		if err := json.Unmarshal(env.Dataset, out); err != nil {
			return fmt.Errorf("decoding dataset: %w", err)
		}
	}

	return nil
}
