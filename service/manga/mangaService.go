package mangasvc

import (
	"context"
	"errors"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	mangarepo "github.com/SiddharthPaudel/MangaZone-Backend/repository/manga"
)

var (
	ErrNotFound  = errors.New("manga not found")
	ErrUserGone  = errors.New("user not found")
	ErrBadInput  = errors.New("invalid payload")
	ErrBadRating = errors.New("rating must be between 1 and 5")
	ErrNoImages  = errors.New("no images found in chapter upload")
)

type UpdateFields = mangarepo.UpdateFields

// Detail is a manga populated with its sub-resources, the shape the
// reader front-end consumes.
type Detail struct {
	model.Manga
	Chapters  []model.Chapter `json:"chapters"`
	Ratings   []model.Rating  `json:"ratings"`
	Comments  []model.Comment `json:"comments"`
	Bookmarks []int64         `json:"bookmarks"`
	RentedBy  []model.Renter  `json:"rented_by"`
}

// UserGetter is the slice of the user store this service needs for
// comment/rating attribution.
type UserGetter interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Service interface {
	Create(ctx context.Context, m *model.Manga) error
	Update(ctx context.Context, id int64, f UpdateFields) (*model.Manga, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Manga, error)
	Detail(ctx context.Context, id int64) (*Detail, error)
	TopRated(ctx context.Context) ([]model.Manga, error)

	AddChapter(ctx context.Context, mangaID int64, title string, imageURLs []string) (*model.Chapter, error)

	AddComment(ctx context.Context, mangaID, userID int64, text string) ([]model.Comment, error)
	RemoveComment(ctx context.Context, mangaID, commentID, userID int64) error
	DeleteComment(ctx context.Context, mangaID, commentID int64) error

	Rate(ctx context.Context, mangaID, userID int64, rating int, review string) ([]model.Rating, error)
	RemoveRating(ctx context.Context, mangaID, userID int64) error

	Bookmark(ctx context.Context, mangaID, userID int64) ([]int64, error)
	RemoveBookmark(ctx context.Context, mangaID, userID int64) error
	BookmarksOf(ctx context.Context, userID int64) ([]model.Manga, error)
}

type service struct {
	r  mangarepo.Repo
	ug UserGetter
}

func New(r mangarepo.Repo, ug UserGetter) Service { return &service{r: r, ug: ug} }

func (s *service) Create(ctx context.Context, m *model.Manga) error {
	if m.Title == "" {
		return ErrBadInput
	}
	if m.RentalDetails != nil && m.RentalDetails.Price < 0 {
		return ErrBadInput
	}
	return s.r.Create(ctx, m)
}

func (s *service) Update(ctx context.Context, id int64, f UpdateFields) (*model.Manga, error) {
	m, err := s.r.Update(ctx, id, f)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return m, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return mapNotFound(s.r.Delete(ctx, id))
}

func (s *service) List(ctx context.Context) ([]model.Manga, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*Detail, error) {
	m, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	d := &Detail{Manga: *m}

	if d.Chapters, err = s.r.Chapters(ctx, id); err != nil {
		return nil, err
	}
	if d.Ratings, err = s.r.Ratings(ctx, id); err != nil {
		return nil, err
	}
	if d.Comments, err = s.r.Comments(ctx, id); err != nil {
		return nil, err
	}
	if d.Bookmarks, err = s.r.Bookmarks(ctx, id); err != nil {
		return nil, err
	}
	if d.RentedBy, err = s.r.Renters(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *service) TopRated(ctx context.Context) ([]model.Manga, error) {
	return s.r.TopRated(ctx, 10)
}

func (s *service) AddChapter(ctx context.Context, mangaID int64, title string, imageURLs []string) (*model.Chapter, error) {
	if len(imageURLs) == 0 {
		return nil, ErrNoImages
	}
	if _, err := s.r.ByID(ctx, mangaID); err != nil {
		return nil, mapNotFound(err)
	}
	ch := &model.Chapter{MangaID: mangaID, Title: title, ImageURLs: imageURLs}
	if err := s.r.AddChapter(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *service) AddComment(ctx context.Context, mangaID, userID int64, text string) ([]model.Comment, error) {
	if text == "" {
		return nil, ErrBadInput
	}
	if _, err := s.r.ByID(ctx, mangaID); err != nil {
		return nil, mapNotFound(err)
	}
	u, err := s.ug.ByID(ctx, userID)
	if err != nil {
		return nil, ErrUserGone
	}

	c := &model.Comment{
		MangaID:  mangaID,
		UserID:   userID,
		Username: u.Name,
		Avatar:   u.Avatar,
		Text:     text,
	}
	if err := s.r.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return s.r.Comments(ctx, mangaID)
}

// RemoveComment deletes a comment owned by userID.
func (s *service) RemoveComment(ctx context.Context, mangaID, commentID, userID int64) error {
	ok, err := s.r.DeleteComment(ctx, mangaID, commentID, &userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// DeleteComment removes a comment regardless of owner (moderation path).
func (s *service) DeleteComment(ctx context.Context, mangaID, commentID int64) error {
	ok, err := s.r.DeleteComment(ctx, mangaID, commentID, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *service) Rate(ctx context.Context, mangaID, userID int64, rating int, review string) ([]model.Rating, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrBadRating
	}
	if _, err := s.r.ByID(ctx, mangaID); err != nil {
		return nil, mapNotFound(err)
	}
	u, err := s.ug.ByID(ctx, userID)
	if err != nil {
		return nil, ErrUserGone
	}

	rt := &model.Rating{
		MangaID: mangaID,
		UserID:  userID,
		Rating:  rating,
		Review:  review,
		Avatar:  u.Avatar,
	}
	if err := s.r.UpsertRating(ctx, rt); err != nil {
		return nil, err
	}
	return s.r.Ratings(ctx, mangaID)
}

func (s *service) RemoveRating(ctx context.Context, mangaID, userID int64) error {
	ok, err := s.r.DeleteRating(ctx, mangaID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *service) Bookmark(ctx context.Context, mangaID, userID int64) ([]int64, error) {
	if _, err := s.r.ByID(ctx, mangaID); err != nil {
		return nil, mapNotFound(err)
	}
	if err := s.r.AddBookmark(ctx, mangaID, userID); err != nil {
		return nil, err
	}
	return s.r.Bookmarks(ctx, mangaID)
}

func (s *service) RemoveBookmark(ctx context.Context, mangaID, userID int64) error {
	if _, err := s.r.ByID(ctx, mangaID); err != nil {
		return mapNotFound(err)
	}
	return s.r.RemoveBookmark(ctx, mangaID, userID)
}

func (s *service) BookmarksOf(ctx context.Context, userID int64) ([]model.Manga, error) {
	return s.r.BookmarkedBy(ctx, userID)
}

func mapNotFound(err error) error {
	if errors.Is(err, mangarepo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
