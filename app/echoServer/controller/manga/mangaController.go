package manga

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	mangarepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/manga"
	mangasvc "github.com/SiddharthPaudel/MangaZone-Backend/service/manga"
	"github.com/SiddharthPaudel/MangaZone-Backend/util/upload"
)

type Controller struct {
	Svc       mangasvc.Service
	V         *validator.Validate
	Log       *slog.Logger
	UploadDir string
}

func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func splitGenre(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func (h *Controller) parseRentalDetails(c echo.Context) (*model.RentalDetails, error) {
	raw := c.FormValue("rentalDetails")
	if raw == "" {
		return nil, nil
	}
	var in rentalDetailsIn
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, err
	}
	if err := h.V.Struct(in); err != nil {
		return nil, err
	}
	return &model.RentalDetails{
		Price:         in.Price,
		DurationValue: in.Duration.Value,
		DurationUnit:  model.DurationUnit(in.Duration.Unit),
	}, nil
}

// POST /api/manga  (admin, multipart)
func (h *Controller) Create(c echo.Context) error {
	m := &model.Manga{
		Title:       c.FormValue("title"),
		Author:      c.FormValue("author"),
		Description: c.FormValue("description"),
		Genre:       splitGenre(c.FormValue("genre")),
		IsRentable:  c.FormValue("isRentable") == "true",
	}

	if m.IsRentable {
		rd, err := h.parseRentalDetails(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid rentalDetails"})
		}
		m.RentalDetails = rd
	}

	if fh, err := c.FormFile("coverImage"); err == nil {
		name, err := upload.SaveFile(fh, filepath.Join(h.UploadDir, "covers"))
		if err != nil {
			h.Log.Error("save cover", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create manga"})
		}
		m.CoverImage = name
	}

	if err := h.Svc.Create(c.Request().Context(), m); err != nil {
		if errors.Is(err, mangasvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "title is required"})
		}
		h.Log.Error("manga create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to create manga"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Manga created", "manga": m})
}

// POST /api/manga/:mangaId/chapters  (admin, multipart zip)
func (h *Controller) AddChapter(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	title := c.FormValue("title")
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "title is required"})
	}
	fh, err := c.FormFile("zipFile")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Zip file not uploaded."})
	}

	zipsDir := filepath.Join(h.UploadDir, "chapters", "zips")
	zipName, err := upload.SaveFile(fh, zipsDir)
	if err != nil {
		h.Log.Error("save chapter zip", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to add chapter"})
	}
	zipPath := filepath.Join(zipsDir, zipName)
	defer os.Remove(zipPath)

	imageURLs, err := upload.ExtractChapterImages(zipPath, filepath.Join(h.UploadDir, "chapters"), title)
	if err != nil {
		h.Log.Error("extract chapter zip", "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid zip file"})
	}

	ch, err := h.Svc.AddChapter(c.Request().Context(), id, title, imageURLs)
	if err != nil {
		switch {
		case errors.Is(err, mangasvc.ErrNoImages):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "No images found in the zip file."})
		case errors.Is(err, mangasvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found."})
		}
		h.Log.Error("add chapter", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to add chapter"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Chapter added successfully", "chapter": ch})
}

// PUT /api/manga/update/:mangaId  (admin, multipart)
func (h *Controller) Update(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}

	var f mangarepo.UpdateFields
	if v := c.FormValue("title"); v != "" {
		f.Title = &v
	}
	if v := c.FormValue("author"); v != "" {
		f.Author = &v
	}
	if v := c.FormValue("description"); v != "" {
		f.Description = &v
	}
	f.Genre = splitGenre(c.FormValue("genre"))

	if v := c.FormValue("isRentable"); v != "" {
		rentable := v == "true"
		f.IsRentable = &rentable
		if rentable {
			rd, err := h.parseRentalDetails(c)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid rentalDetails"})
			}
			f.RentalDetails = rd
		} else {
			f.ClearRental = true
		}
	}

	if fh, err := c.FormFile("coverImage"); err == nil {
		name, err := upload.SaveFile(fh, filepath.Join(h.UploadDir, "covers"))
		if err != nil {
			h.Log.Error("save cover", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update manga"})
		}
		f.CoverImage = &name
	}

	m, err := h.Svc.Update(c.Request().Context(), id, f)
	if err != nil {
		if errors.Is(err, mangasvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found"})
		}
		h.Log.Error("manga update", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update manga"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Manga updated", "manga": m})
}

// DELETE /api/manga/delete/:mangaId  (admin)
func (h *Controller) Delete(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, mangasvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found"})
		}
		h.Log.Error("manga delete", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete manga"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Manga deleted successfully"})
}

// GET /api/manga
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("manga list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch manga"})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/manga/:mangaId
func (h *Controller) Detail(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	d, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, mangasvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found"})
		}
		h.Log.Error("manga detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch manga details"})
	}
	return c.JSON(http.StatusOK, d)
}

// GET /api/manga/top-rated
func (h *Controller) TopRated(c echo.Context) error {
	rows, err := h.Svc.TopRated(c.Request().Context())
	if err != nil {
		h.Log.Error("top rated", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to get top rated mangas"})
	}
	return c.JSON(http.StatusOK, rows)
}

// POST /api/manga/:mangaId/comment
func (h *Controller) AddComment(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	var req CommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	comments, err := h.Svc.AddComment(c.Request().Context(), id, req.UserID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, mangasvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found"})
		case errors.Is(err, mangasvc.ErrUserGone):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		h.Log.Error("add comment", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to add comment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment added", "comments": comments})
}

// DELETE /api/manga/:mangaId/comment/:commentId
func (h *Controller) RemoveComment(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	cid, ok := parseID(c, "commentId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid comment id"})
	}
	var req UserRef
	if err := c.Bind(&req); err != nil || req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User ID is required"})
	}

	if err := h.Svc.RemoveComment(c.Request().Context(), id, cid, req.UserID); err != nil {
		if errors.Is(err, mangasvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
		}
		h.Log.Error("remove comment", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error removing comment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment removed successfully"})
}

// DELETE /api/manga/:mangaId/overall-comments/:commentId  (moderation)
func (h *Controller) DeleteComment(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	cid, ok := parseID(c, "commentId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid comment id"})
	}

	if err := h.Svc.DeleteComment(c.Request().Context(), id, cid); err != nil {
		if errors.Is(err, mangasvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Comment not found"})
		}
		h.Log.Error("delete comment", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete comment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Comment deleted successfully"})
}

// POST /api/manga/rate/:mangaId
func (h *Controller) Rate(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	var req RateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User ID and rating are required"})
	}

	ratings, err := h.Svc.Rate(c.Request().Context(), id, req.UserID, req.Rating, req.Review)
	if err != nil {
		switch {
		case errors.Is(err, mangasvc.ErrBadRating):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
		case errors.Is(err, mangasvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found"})
		case errors.Is(err, mangasvc.ErrUserGone):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		h.Log.Error("rate", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error saving rating and review"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Rating and review saved successfully", "ratings": ratings})
}

// DELETE /api/manga/review/:mangaId/:reviewId
//
// reviewId is accepted for route compatibility; ratings are keyed by
// (manga, user) so the body's userId drives the delete.
func (h *Controller) RemoveRating(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	var req UserRef
	if err := c.Bind(&req); err != nil || req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User ID is required"})
	}

	if err := h.Svc.RemoveRating(c.Request().Context(), id, req.UserID); err != nil {
		if errors.Is(err, mangasvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Rating not found"})
		}
		h.Log.Error("remove rating", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error removing rating"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Rating and review removed successfully"})
}

// POST /api/manga/:mangaId/bookmark
func (h *Controller) AddBookmark(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	var req UserRef
	if err := c.Bind(&req); err != nil || req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User ID is required"})
	}

	bookmarks, err := h.Svc.Bookmark(c.Request().Context(), id, req.UserID)
	if err != nil {
		if errors.Is(err, mangasvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found"})
		}
		h.Log.Error("bookmark", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to bookmark manga"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Manga bookmarked", "bookmarks": bookmarks})
}

// DELETE /api/manga/:mangaId/bookmark
func (h *Controller) RemoveBookmark(c echo.Context) error {
	id, ok := parseID(c, "mangaId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}
	var req UserRef
	if err := c.Bind(&req); err != nil || req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User ID is required"})
	}

	if err := h.Svc.RemoveBookmark(c.Request().Context(), id, req.UserID); err != nil {
		if errors.Is(err, mangasvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found"})
		}
		h.Log.Error("remove bookmark", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error removing bookmark"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Bookmark removed successfully"})
}

// GET /api/manga/bookmarks/:userId
func (h *Controller) BookmarksByUser(c echo.Context) error {
	id, ok := parseID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	rows, err := h.Svc.BookmarksOf(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("bookmarks by user", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch bookmarks"})
	}
	return c.JSON(http.StatusOK, rows)
}
