package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillnest/internal/chat/models"
	"skillnest/internal/common"
)

const (
	JobsCollection      = "jobs"
	ProposalsCollection = "proposals"
	ContractsCollection = "contracts"
)

// JobRepository resolves who takes part in a job conversation. The job,
// proposal and contract documents are owned by the marketplace; this side
// only reads them.
type JobRepository interface {
	Participants(ctx context.Context, jobID primitive.ObjectID) (*models.Participants, error)
}

type jobRepo struct {
	jobs      *mongo.Collection
	proposals *mongo.Collection
	contracts *mongo.Collection
}

func NewJobRepository(db *mongo.Database) JobRepository {
	return &jobRepo{
		jobs:      db.Collection(JobsCollection),
		proposals: db.Collection(ProposalsCollection),
		contracts: db.Collection(ContractsCollection),
	}
}

type jobDoc struct {
	ID     primitive.ObjectID `bson:"_id"`
	Client primitive.ObjectID `bson:"client"`
}

type proposalDoc struct {
	Freelancer primitive.ObjectID `bson:"freelancer"`
	Status     string             `bson:"status"`
}

type contractDoc struct {
	Freelancer primitive.ObjectID `bson:"freelancer"`
}

func (r *jobRepo) Participants(ctx context.Context, jobID primitive.ObjectID) (*models.Participants, error) {
	var job jobDoc
	err := r.jobs.FindOne(ctx, bson.M{"_id": jobID}, options.FindOne().SetProjection(bson.M{"client": 1})).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("job %s: %w", jobID.Hex(), common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	var proposals []proposalDoc
	cur, err := r.proposals.Find(ctx, bson.M{"job": jobID}, options.Find().SetProjection(bson.M{"freelancer": 1, "status": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to load proposals: %w", err)
	}
	if err := cur.All(ctx, &proposals); err != nil {
		return nil, fmt.Errorf("failed to decode proposals: %w", err)
	}

	var contracts []contractDoc
	cur, err = r.contracts.Find(ctx,
		bson.M{"job": jobID, "status": bson.M{"$ne": "cancelled"}},
		options.Find().SetProjection(bson.M{"freelancer": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}
	if err := cur.All(ctx, &contracts); err != nil {
		return nil, fmt.Errorf("failed to decode contracts: %w", err)
	}

	hired := lo.Map(contracts, func(c contractDoc, _ int) primitive.ObjectID { return c.Freelancer })
	for _, p := range proposals {
		if p.Status == "hired" || p.Status == "accepted" {
			hired = append(hired, p.Freelancer)
		}
	}
	hired = lo.Uniq(lo.Reject(hired, func(id primitive.ObjectID, _ int) bool { return id.IsZero() }))

	applicants := lo.Uniq(lo.FilterMap(proposals, func(p proposalDoc, _ int) (primitive.ObjectID, bool) {
		return p.Freelancer, !p.Freelancer.IsZero() && !lo.Contains(hired, p.Freelancer)
	}))

	return &models.Participants{
		JobID:      job.ID,
		Client:     job.Client,
		Hired:      hired,
		Applicants: applicants,
	}, nil
}
