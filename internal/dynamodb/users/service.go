package users

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"worthwatch.me/watchlists/internal/data"
	"worthwatch.me/watchlists/internal/dynamodb/keys"
	"worthwatch.me/watchlists/internal/dynamodb/services"
	"worthwatch.me/watchlists/internal/dynamodb/token"
	"worthwatch.me/watchlists/internal/exceptions"
)

type UserDynamoDBService struct {
	table *services.TableDynamoDBService[data.UserDTO, data.UserInputDTO]
}

func NewUserService(tableName string, client services.DynamoDBApi, marshaler token.TokenMarshaler) data.UserDataService {
	return &UserDynamoDBService{
		table: &services.TableDynamoDBService[data.UserDTO, data.UserInputDTO]{
			DynamoDB:       client,
			TableName:      tableName,
			TokenMarshaler: marshaler,
			Name:           "User",
			Shim: func(pk, sk string) data.UserDTO {
				return data.UserDTO{PK: pk, SK: sk}
			},
			OnCreate: func(input data.UserInputDTO, now, pk, sk string) data.UserDTO {
				user := data.UserDTO{
					PK:            pk,
					SK:            sk,
					EntityType:    string(keys.KindUser),
					EmailIndex:    *input.Email,
					UserId:        *input.UserId,
					Email:         *input.Email,
					Username:      *input.Username,
					Bio:           input.Bio,
					AvatarUrl:     input.AvatarUrl,
					CuratorStatus: input.CuratorStatus,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if input.IsCurator != nil {
					user.IsCurator = *input.IsCurator
				}
				return user
			},
			OnUpdate: func(input data.UserInputDTO, update expression.UpdateBuilder) {
				if input.Username != nil {
					update.Set(expression.Name("username"), expression.Value(input.Username))
				}
				if input.Bio != nil {
					update.Set(expression.Name("bio"), expression.Value(input.Bio))
				}
				if input.AvatarUrl != nil {
					update.Set(expression.Name("avatarUrl"), expression.Value(input.AvatarUrl))
				}
				if input.IsCurator != nil {
					update.Set(expression.Name("isCurator"), expression.Value(input.IsCurator))
				}
				if input.CuratorStatus != nil {
					update.Set(expression.Name("curatorStatus"), expression.Value(input.CuratorStatus))
				}
			},
		},
	}
}

func profileAddress(userId string) (services.Address, error) {
	pk, err := keys.Encode(keys.KindUser, userId)
	if err != nil {
		return services.Address{}, err
	}
	return services.Address{Id: userId, PK: pk, SK: keys.ProfileSK}, nil
}

func (us *UserDynamoDBService) CreateUser(ctx context.Context, input data.UserInputDTO) (data.UserDTO, error) {
	if input.UserId == nil || input.Email == nil || input.Username == nil {
		return data.UserDTO{}, exceptions.InvalidInput("A user requires userId, email and username.")
	}
	addr, err := profileAddress(*input.UserId)
	if err != nil {
		return data.UserDTO{}, err
	}
	return us.table.Create(ctx, addr, input)
}

func (us *UserDynamoDBService) GetUserById(ctx context.Context, userId string) (data.UserDTO, error) {
	addr, err := profileAddress(userId)
	if err != nil {
		return data.UserDTO{}, err
	}
	return us.table.Get(ctx, addr)
}

func (us *UserDynamoDBService) GetUserByEmail(ctx context.Context, email string) (data.UserDTO, error) {
	results, err := us.table.Query(ctx, services.Query{
		IndexName:    services.EmailIndex,
		Scope:        "user-email",
		KeyCondition: expression.Key(services.EmailIndexAttr).Equal(expression.Value(email)),
	}, data.QueryParams{Limit: 1})
	if err != nil {
		return data.UserDTO{}, err
	}
	if len(results.Items) == 0 {
		return data.UserDTO{}, exceptions.NotFound("user", email)
	}
	return results.Items[0], nil
}

func (us *UserDynamoDBService) UpdateUser(ctx context.Context, userId string, input data.UserInputDTO) (data.UserDTO, error) {
	addr, err := profileAddress(userId)
	if err != nil {
		return data.UserDTO{}, err
	}
	return us.table.Update(ctx, addr, input)
}

func (us *UserDynamoDBService) DeleteUser(ctx context.Context, userId string) error {
	addr, err := profileAddress(userId)
	if err != nil {
		return err
	}
	return us.table.Delete(ctx, addr)
}
