package books

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOneDecodesDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "readOne", r.URL.Query().Get("action"))
		assert.Equal(t, "42", r.FormValue("idLibro"))

		fmt.Fprint(w, `{"status":true,"dataset":{"id_libro":"42","titulo_libro":"Dune","precio_libro":"19.50","imagen_libro":"dune.png"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	detail, err := client.ReadOne(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", detail.ID)
	assert.Equal(t, "Dune", detail.Title)
	assert.Equal(t, "19.5", detail.Price.String())
	assert.Equal(t, "dune.png", detail.Image)
}

func TestStatusFalseSurfacesErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":false,"error":"Libro no encontrado"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	_, err := client.ReadOne(context.Background(), "missing")
	require.Error(t, err)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Libro no encontrado", remote.Message)
	assert.Equal(t, "Libro no encontrado", err.Error())
}

func TestReadCommentsToleratesStringRatings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "readOneComment", r.URL.Query().Get("action"))
		assert.Equal(t, "42", r.FormValue("id_libro"))

		fmt.Fprint(w, `{"status":true,"dataset":[
			{"nombre_usuario":"ana","comentario":"Great!","calificacion":"4"},
			{"nombre_usuario":"luis","comentario":"ok","calificacion":3}
		]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	comments, err := client.ReadComments(context.Background(), "42")
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, 4, comments[0].RatingValue())
	assert.Equal(t, 3, comments[1].RatingValue())
	assert.Equal(t, "Great!", comments[0].Body)
}

func TestCreateCommentSendsFormFields(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "createRow", r.URL.Query().Get("action"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		gotForm = map[string]string{
			"id_libro":     r.FormValue("id_libro"),
			"comentario":   r.FormValue("comentario"),
			"calificacion": r.FormValue("calificacion"),
		}
		fmt.Fprint(w, `{"status":true,"dataset":null}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	err := client.CreateComment(context.Background(), "42", "Great!", 4)
	require.NoError(t, err)

	assert.Equal(t, "42", gotForm["id_libro"])
	assert.Equal(t, "Great!", gotForm["comentario"])
	assert.Equal(t, "4", gotForm["calificacion"])
}

func TestMalformedResponseIsNotARemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>fatal error</html>`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	_, err := client.ReadOne(context.Background(), "42")
	require.Error(t, err)

	var remote *RemoteError
	assert.False(t, errors.As(err, &remote), "decode failures are transport errors, not backend replies")
}
