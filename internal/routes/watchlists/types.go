package watchlists

import (
	"worthwatch.me/watchlists/internal/data"
)

type WatchlistInput struct {
	Title         *string   `json:"title" validate:"omitempty,min=1,max=256"`
	Description   *string   `json:"description" validate:"omitempty,max=4096"`
	CoverImageUrl *string   `json:"coverImageUrl" validate:"omitempty,url"`
	IsPublic      *bool     `json:"isPublic"`
	Tags          *[]string `json:"tags" validate:"omitempty,max=25,dive,min=1,max=64"`
}

func (w *WatchlistInput) ToData(curatorId string) data.WatchlistInputDTO {
	dto := data.WatchlistInputDTO{
		Title:         w.Title,
		Description:   w.Description,
		CoverImageUrl: w.CoverImageUrl,
		IsPublic:      w.IsPublic,
		Tags:          w.Tags,
	}
	if curatorId != "" {
		dto.CuratorId = &curatorId
	}
	return dto
}

type Watchlist struct {
	Id            string   `json:"watchlistId"`
	CuratorId     string   `json:"curatorId"`
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	CoverImageUrl *string  `json:"coverImageUrl"`
	IsPublic      bool     `json:"isPublic"`
	Tags          []string `json:"tags"`
	ItemCount     int      `json:"itemCount"`
	LikeCount     int      `json:"likeCount"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func NewWatchlist(dto data.WatchlistDTO) Watchlist {
	tags := dto.Tags
	if tags == nil {
		tags = []string{}
	}
	return Watchlist{
		Id:            dto.WatchlistId,
		CuratorId:     dto.CuratorId,
		Title:         dto.Title,
		Description:   dto.Description,
		CoverImageUrl: dto.CoverImageUrl,
		IsPublic:      dto.IsPublic,
		Tags:          tags,
		ItemCount:     dto.ItemCount,
		LikeCount:     dto.LikeCount,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
	}
}

type WatchlistItemInput struct {
	ContentType *string `json:"contentType" validate:"omitempty,oneof=MOVIE SHOW"`
	ContentId   *string `json:"contentId" validate:"omitempty,min=1"`
	Position    *int    `json:"position" validate:"omitempty,gte=0"`
	CuratorNote *string `json:"curatorNote" validate:"omitempty,max=2048"`
}

func (w *WatchlistItemInput) ToData() data.WatchlistItemInputDTO {
	return data.WatchlistItemInputDTO{
		ContentType: w.ContentType,
		ContentId:   w.ContentId,
		Position:    w.Position,
		CuratorNote: w.CuratorNote,
	}
}

type WatchlistItem struct {
	ContentType string  `json:"contentType"`
	ContentId   string  `json:"contentId"`
	Position    int     `json:"position"`
	CuratorNote *string `json:"curatorNote"`
	AddedAt     string  `json:"addedAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func NewWatchlistItem(dto data.WatchlistItemDTO) WatchlistItem {
	return WatchlistItem{
		ContentType: dto.ContentType,
		ContentId:   dto.ContentId,
		Position:    dto.Position,
		CuratorNote: dto.CuratorNote,
		AddedAt:     dto.AddedAt,
		UpdatedAt:   dto.UpdatedAt,
	}
}

type ReorderInput struct {
	Items []data.ItemRef `json:"items" validate:"required,min=1,dive"`
}

type Like struct {
	UserId      string `json:"userId"`
	WatchlistId string `json:"watchlistId"`
	CreatedAt   string `json:"createdAt"`
}

func NewLike(dto data.LikeDTO) Like {
	return Like{
		UserId:      dto.UserId,
		WatchlistId: dto.WatchlistId,
		CreatedAt:   dto.CreatedAt,
	}
}
