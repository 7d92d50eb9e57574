package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

// ThreadModel is the Mongo document holding one thread's state.
type ThreadModel struct {
	ThreadID string                  `bson:"_id"`
	State    state.ConversationState `bson:"state"`
}

func (m ThreadModel) Id() string { return m.ThreadID }

func (m ThreadModel) CollectionName() string { return "travel_threads" }

// MongoStore persists thread state through go-api-boot odm.
type MongoStore struct {
	collection odm.OdmCollectionInterface[ThreadModel]
}

func NewMongoStore(collection odm.OdmCollectionInterface[ThreadModel]) *MongoStore {
	return &MongoStore{collection: collection}
}

func (s *MongoStore) Load(ctx context.Context, threadID string) (*state.ConversationState, error) {
	if threadID == "" {
		return nil, ErrInvalidID
	}
	if s.collection == nil {
		return nil, ErrNotFound
	}

	doc, err := async.Await(s.collection.FindOneByID(ctx, threadID))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logger.Error("Failed to find thread", zap.String("threadId", threadID), zap.Error(err))
		return nil, fmt.Errorf("find thread: %w", err)
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	return fromModel(*doc), nil
}

func (s *MongoStore) Save(ctx context.Context, st *state.ConversationState) error {
	if err := validate(st); err != nil {
		return err
	}
	if s.collection == nil {
		return nil
	}

	if _, err := async.Await(s.collection.Save(ctx, toModel(st))); err != nil {
		logger.Error("Failed to save thread", zap.String("threadId", st.ThreadID), zap.Error(err))
		return fmt.Errorf("save thread: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, threadID string) error {
	if threadID == "" {
		return ErrInvalidID
	}
	if s.collection == nil {
		return nil
	}

	if _, err := async.Await(s.collection.DeleteByID(ctx, threadID)); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

func toModel(st *state.ConversationState) ThreadModel {
	return ThreadModel{ThreadID: st.ThreadID, State: *st.Clone()}
}

// fromModel restores non-nil slices, which bson decodes as nil when empty.
func fromModel(m ThreadModel) *state.ConversationState {
	st := m.State.Clone()
	st.ThreadID = m.ThreadID
	if st.WeatherForecast == nil {
		st.WeatherForecast = []state.DailyForecast{}
	}
	if st.ImageURLs == nil {
		st.ImageURLs = []string{}
	}
	if st.Errors == nil {
		st.Errors = []string{}
	}
	return st
}
