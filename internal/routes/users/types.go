package users

import "worthwatch.me/watchlists/internal/data"

type UserInput struct {
	Username      *string `json:"username" validate:"omitempty,min=1,max=128"`
	Bio           *string `json:"bio" validate:"omitempty,max=4096"`
	AvatarUrl     *string `json:"avatarUrl" validate:"omitempty,url"`
	IsCurator     *bool   `json:"isCurator"`
	CuratorStatus *string `json:"curatorStatus" validate:"omitempty,max=256"`
}

func (u *UserInput) ToData(userId string, email string) data.UserInputDTO {
	dto := data.UserInputDTO{
		Username:      u.Username,
		Bio:           u.Bio,
		AvatarUrl:     u.AvatarUrl,
		IsCurator:     u.IsCurator,
		CuratorStatus: u.CuratorStatus,
	}
	if userId != "" {
		dto.UserId = &userId
	}
	if email != "" {
		dto.Email = &email
	}
	return dto
}

type User struct {
	Id            string  `json:"userId"`
	Email         string  `json:"email"`
	Username      string  `json:"username"`
	Bio           *string `json:"bio"`
	AvatarUrl     *string `json:"avatarUrl"`
	IsCurator     bool    `json:"isCurator"`
	CuratorStatus *string `json:"curatorStatus"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func NewUser(dto data.UserDTO) User {
	return User{
		Id:            dto.UserId,
		Email:         dto.Email,
		Username:      dto.Username,
		Bio:           dto.Bio,
		AvatarUrl:     dto.AvatarUrl,
		IsCurator:     dto.IsCurator,
		CuratorStatus: dto.CuratorStatus,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
	}
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
