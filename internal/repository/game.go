package repository

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"ink_goban/internal/bootstrap"
	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
	"ink_goban/internal/statuses"
)

// GameRepository хранит живые партии: SGF-снимок в Redis (ключ — секрет
// игры), карточку партии — в Mongo-коллекции games.
type GameRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

// GenerateGameKeys выдаёт пару ключей: секретный uuid для участников и
// короткий публичный код для приглашения.
func (g *GameRepository) GenerateGameKeys(ctx context.Context) (gameKeySecret string, gameKeyPublic string) {
	gameKeySecret = uuid.New().String()
	for {
		gameKeyPublic = generateHash(gameKeySecret + gameKeyPublic)

		if g.CheckPublicKeyIsUniq(ctx, gameKeyPublic) {
			return gameKeySecret, gameKeyPublic
		}
	}
}

func generateHash(s string) string {
	h := md5.New()
	h.Write([]byte(s))
	hashBytes := h.Sum(nil)
	number := binary.BigEndian.Uint32(hashBytes[:4])
	code := number % 100000
	return fmt.Sprintf("%05d", code)
}

func (g *GameRepository) CheckPublicKeyIsUniq(ctx context.Context, gameKeyPublic string) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection("games")
	filter := bson.M{
		"game_key_public": gameKeyPublic,
		"status":          bson.M{"$ne": statuses.StatusArchived},
	}
	err := collection.FindOne(ctx, filter).Err()
	return errors.Is(err, mongo.ErrNoDocuments)
}

func (g *GameRepository) PutGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection("games")

	if _, err := collection.InsertOne(ctx, gameData); err != nil {
		g.log.Errorf("failed to insert game: %v", err)
		return errs.ErrCreateGameFailed
	}

	g.log.Infow("game created", "public_key", gameData.GameKeyPublic)
	return nil
}

func (g *GameRepository) GetGameByPublicKey(ctx context.Context, gameKeyPublic string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection("games")
	filter := bson.M{
		"game_key_public": gameKeyPublic,
		"status":          bson.M{"$ne": statuses.StatusArchived},
	}

	var found game.Game
	err := collection.FindOne(ctx, filter).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errs.ErrGameNotFound
	}
	if err != nil {
		return game.Game{}, err
	}
	return found, nil
}

func (g *GameRepository) GetGameBySecretKey(ctx context.Context, gameKeySecret string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection("games")

	var found game.Game
	err := collection.FindOne(ctx, bson.M{"game_key_secret": gameKeySecret}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errs.ErrGameNotFound
	}
	if err != nil {
		return game.Game{}, err
	}
	return found, nil
}

// AddPlayer сажает второго игрока на свободный цвет и переводит партию
// в состояние in_progress.
func (g *GameRepository) AddPlayer(ctx context.Context, playerID string, gameKeySecret string) (game.Game, error) {
	found, err := g.GetGameBySecretKey(ctx, gameKeySecret)
	if err != nil {
		return game.Game{}, err
	}

	update := bson.M{}
	switch {
	case found.PlayerBlack == "":
		update = bson.M{"player_black": playerID}
	case found.PlayerWhite == "":
		update = bson.M{"player_white": playerID}
	default:
		return game.Game{}, errs.ErrJoinGameFailed
	}

	now := time.Now()
	update["status"] = statuses.StatusInProgress
	update["started_at"] = now

	ctxUpdate, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection("games")
	if _, err := collection.UpdateOne(ctxUpdate,
		bson.M{"game_key_secret": gameKeySecret},
		bson.M{"$set": update}); err != nil {
		g.log.Errorf("failed to add player: %v", err)
		return game.Game{}, errs.ErrJoinGameFailed
	}

	return g.GetGameBySecretKey(ctx, gameKeySecret)
}

func (g *GameRepository) ArchiveGame(ctx context.Context, gameKeySecret string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := g.mongo.Collection("games")
	_, err := collection.UpdateOne(ctx,
		bson.M{"game_key_secret": gameKeySecret},
		bson.M{"$set": bson.M{"status": statuses.StatusArchived}})
	return err
}

func (g *GameRepository) SaveSGFToRedis(ctx context.Context, key string, sgfText string) error {
	return g.redis.Set(ctx, "sgf:"+key, sgfText, 0).Err()
}

func (g *GameRepository) LoadSGFFromRedis(ctx context.Context, key string) (string, error) {
	val, err := g.redis.Get(ctx, "sgf:"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errs.ErrGameNotFound
	}
	return val, err
}
