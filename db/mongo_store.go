package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"roastroyale/models"
	"roastroyale/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLeaderboard stores players in a mongo collection with a unique
// index on username.
type MongoLeaderboard struct {
	client  *mongo.Client
	players *mongo.Collection
	now     func() time.Time
}

// extractDBName parses the database name from the URI, defaulting to "roastroyale"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "roastroyale"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "roastroyale"
}

// ConnectMongoDB connects, pings and prepares the players collection.
func ConnectMongoDB(ctx context.Context, uri, collection string) (*MongoLeaderboard, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDBName(uri)
	utils.LogInfo("Using database: %s", dbName)

	store := NewMongoLeaderboard(client.Database(dbName).Collection(collection))
	store.client = client
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func NewMongoLeaderboard(players *mongo.Collection) *MongoLeaderboard {
	return &MongoLeaderboard{players: players, now: time.Now}
}

// EnsureIndexes creates the unique username index and the score index used
// by FetchTop.
func (m *MongoLeaderboard) EnsureIndexes(ctx context.Context) error {
	_, err := m.players.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "roast_score", Value: -1}, {Key: "username", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create player indexes: %w", err)
	}
	return nil
}

func (m *MongoLeaderboard) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *MongoLeaderboard) FetchTop(ctx context.Context, n int) ([]models.Player, error) {
	if n <= 0 {
		return []models.Player{}, nil
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "roast_score", Value: -1},
		{Key: "username", Value: 1},
	}).SetLimit(int64(n))

	cursor, err := m.players.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	players := []models.Player{}
	if err := cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return players, nil
}

func (m *MongoLeaderboard) FetchByUsername(ctx context.Context, username string) (*models.Player, error) {
	var player models.Player
	err := m.players.FindOne(ctx, bson.M{"username": strings.TrimSpace(username)}).Decode(&player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to fetch player: %w", err)
	}
	return &player, nil
}

// UpsertAfterBattle is a single FindOneAndUpdate, so the increment is atomic
// on the server. The filter excludes players whose recent_battles already
// holds battleID; such a player does not match, the upsert then collides
// with the unique username index, and the repeat is reported as
// ErrBattleAlreadyRecorded. Two first-time writes for the same username can
// also collide; the loser retries once and lands on the update path.
func (m *MongoLeaderboard) UpsertAfterBattle(ctx context.Context, username string, points int, battleID string) (*models.Player, error) {
	username, err := validateUpsert(username, points)
	if err != nil {
		return nil, err
	}

	player, err := m.upsert(ctx, username, points, battleID)
	if mongo.IsDuplicateKeyError(err) {
		player, err = m.upsert(ctx, username, points, battleID)
		if mongo.IsDuplicateKeyError(err) && battleID != "" {
			return nil, ErrBattleAlreadyRecorded
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update player score: %w", err)
	}
	return player, nil
}

func (m *MongoLeaderboard) upsert(ctx context.Context, username string, points int, battleID string) (*models.Player, error) {
	now := m.now().UTC()
	filter := bson.M{"username": username}
	update := bson.M{
		"$inc":         bson.M{"roast_score": points, "total_battles": 1},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	if battleID != "" {
		filter["recent_battles"] = bson.M{"$ne": battleID}
		update["$push"] = bson.M{"recent_battles": bson.M{
			"$each":  bson.A{battleID},
			"$slice": -recentBattleLimit,
		}}
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var player models.Player
	if err := m.players.FindOneAndUpdate(ctx, filter, update, opts).Decode(&player); err != nil {
		return nil, err
	}
	return &player, nil
}
