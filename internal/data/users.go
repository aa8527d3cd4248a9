package data

import "context"

// UserDTO is the stored shape of a user profile row. EmailIndex shadows the
// email attribute into the GS1 partition key for the unique-email lookup.
type UserDTO struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"entityType"`
	EmailIndex string `dynamodbav:"GS1-PK"`

	UserId        string  `dynamodbav:"userId"`
	Email         string  `dynamodbav:"email"`
	Username      string  `dynamodbav:"username"`
	Bio           *string `dynamodbav:"bio"`
	AvatarUrl     *string `dynamodbav:"avatarUrl"`
	IsCurator     bool    `dynamodbav:"isCurator"`
	CuratorStatus *string `dynamodbav:"curatorStatus"`

	CreatedAt string `dynamodbav:"createdAt"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// UserInputDTO carries create and update fields. Absent pointers leave the
// stored attribute untouched on update.
type UserInputDTO struct {
	UserId        *string
	Email         *string
	Username      *string
	Bio           *string
	AvatarUrl     *string
	IsCurator     *bool
	CuratorStatus *string
}

type UserDataService interface {
	CreateUser(ctx context.Context, input UserInputDTO) (UserDTO, error)
	GetUserById(ctx context.Context, userId string) (UserDTO, error)
	GetUserByEmail(ctx context.Context, email string) (UserDTO, error)
	UpdateUser(ctx context.Context, userId string, input UserInputDTO) (UserDTO, error)
	DeleteUser(ctx context.Context, userId string) error
}
