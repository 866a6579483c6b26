package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/psychoder05/chartworm-backend/src/model"
)

const maxExplainerImages = 5

type explainerStore interface {
	Create(ctx context.Context, explainer *model.Explainer) error
	Update(ctx context.Context, explainer *model.Explainer) error
	FindByID(ctx context.Context, id uint) (*model.Explainer, error)
	FindAll(ctx context.Context) ([]model.Explainer, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// explainerForm is the decoded request body for add/edit, whichever
// content type it arrived in.
type explainerForm struct {
	TradeID uint
	Title   string
	Content string
	Images  []string
}

// AddExplainerHandler attaches a new free-text note (optionally with
// images) to a trade. Accepts multipart uploads or plain JSON with remote
// image URLs.
func AddExplainerHandler(repo explainerStore, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := parseExplainerForm(r, uploadDir)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if form.TradeID == 0 {
			respondMessage(w, http.StatusBadRequest, "Invalid tradeId.")
			return
		}

		explainer := &model.Explainer{
			TradeID: form.TradeID,
			Title:   form.Title,
			Content: form.Content,
			Images:  form.Images,
		}

		if err := repo.Create(r.Context(), explainer); err != nil {
			respondError(w, err)
			return
		}

		respondData(w, http.StatusCreated, "Trade explanation added.", explainer)
	}
}

// EditExplainerHandler updates an existing note. Uploaded/body images
// replace the stored image list, matching the original client contract.
func EditExplainerHandler(repo explainerStore, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid explainer id.")
			return
		}

		form, err := parseExplainerForm(r, uploadDir)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		explainer, err := repo.FindByID(r.Context(), uint(id))
		if err != nil {
			respondError(w, err)
			return
		}
		if explainer == nil {
			respondMessage(w, http.StatusNotFound, "Trade explanation not found.")
			return
		}

		if form.TradeID != 0 {
			explainer.TradeID = form.TradeID
		}
		explainer.Title = form.Title
		explainer.Content = form.Content
		explainer.Images = form.Images

		if err := repo.Update(r.Context(), explainer); err != nil {
			respondError(w, err)
			return
		}

		respondData(w, http.StatusOK, "Trade explanation updated.", explainer)
	}
}

// GetAllExplainerHandler lists every note, newest first, with trade context.
func GetAllExplainerHandler(repo explainerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		explainers, err := repo.FindAll(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respondData(w, http.StatusOK, "", explainers)
	}
}

// DeleteExplainerHandler removes a note by id.
func DeleteExplainerHandler(repo explainerStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid explainer id.")
			return
		}

		deleted, err := repo.Delete(r.Context(), uint(id))
		if err != nil {
			respondError(w, err)
			return
		}
		if !deleted {
			respondMessage(w, http.StatusNotFound, "Trade explanation not found.")
			return
		}

		respondMessage(w, http.StatusOK, "Trade explanation deleted.")
	}
}

func parseExplainerForm(r *http.Request, uploadDir string) (*explainerForm, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, fmt.Errorf("invalid multipart form")
		}

		form := &explainerForm{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
		}
		if tradeID, err := strconv.ParseUint(r.FormValue("tradeId"), 10, 64); err == nil {
			form.TradeID = uint(tradeID)
		}

		uploaded, err := saveUploadedImages(r, uploadDir)
		if err != nil {
			return nil, err
		}
		form.Images = append(form.Images, uploaded...)

		// Remote image URLs may arrive as plain form values alongside
		// the uploaded files.
		for _, v := range r.MultipartForm.Value["images"] {
			if v != "" {
				form.Images = append(form.Images, v)
			}
		}
		return form, nil
	}

	var body struct {
		TradeID uint     `json:"tradeId"`
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Images  []string `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid request payload")
	}

	return &explainerForm{
		TradeID: body.TradeID,
		Title:   body.Title,
		Content: body.Content,
		Images:  body.Images,
	}, nil
}

// saveUploadedImages stores up to maxExplainerImages files under uploadDir
// with generated names and returns their public /uploads URLs.
func saveUploadedImages(r *http.Request, uploadDir string) ([]string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxExplainerImages {
		files = files[:maxExplainerImages]
	}

	var urls []string
	for _, fh := range files {
		name, err := saveUploadedImage(fh, uploadDir)
		if err != nil {
			logger.WithError(err).Error("failed to store uploaded image")
			return nil, fmt.Errorf("failed to store uploaded image")
		}
		urls = append(urls, publicURL(r, name))
	}
	return urls, nil
}

func saveUploadedImage(fh *multipart.FileHeader, uploadDir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

func publicURL(r *http.Request, filename string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/uploads/%s", scheme, r.Host, filename)
}
