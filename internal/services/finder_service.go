package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"giftfinder/internal/apiclient"
	"giftfinder/internal/events"
	"giftfinder/internal/finder"
)

type FinderService struct {
	Client *apiclient.Client
	Events events.Publisher
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewFinderService(client *apiclient.Client, pub events.Publisher, logger *logrus.Logger) *FinderService {
	return &FinderService{Client: client, Events: pub, Logger: logger, Now: time.Now}
}

// Submit sends the wizard's criteria once and settles the outcome. There is
// no retry.
func (s *FinderService) Submit(ctx context.Context, sid, lang string, w finder.Wizard) finder.Outcome {
	crit := w.Criteria()
	out := finder.Resolve(s.Client.RequestRecommendations(ctx, crit))

	if s.Events != nil {
		e := events.NewSearch(sid, lang, s.Now())
		e.Age = crit.Age
		e.Budget = crit.Budget
		e.Interests = crit.Interests
		e.Gender = crit.Gender
		e.Relationship = crit.Relationship
		e.Results = len(out.Results)
		if err := s.Events.Publish(ctx, e); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("finder: publish search event")
		}
	}
	return out
}
