package tmdb

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Title fetches details, credits and videos of a title concurrently
func (c *Client) Title(ctx context.Context, mt MediaType, id int) (*Title, error) {
	if !c.HasCredential() {
		return nil, ErrMissingCredential
	}

	var title Title
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		details, err := c.Details(ctx, mt, id)
		if err != nil {
			return fmt.Errorf("failed to get details: %w", err)
		}
		title.Details = details
		return nil
	})

	g.Go(func() error {
		credits, err := c.Credits(ctx, mt, id)
		if err != nil {
			return fmt.Errorf("failed to get credits: %w", err)
		}
		title.Credits = credits
		return nil
	})

	g.Go(func() error {
		videos, err := c.Videos(ctx, mt, id)
		if err != nil {
			return fmt.Errorf("failed to get videos: %w", err)
		}
		title.Videos = videos
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("media_type", string(mt)).
		Int("id", id).
		Int("cast", len(title.Credits.Cast)).
		Int("videos", len(title.Videos)).
		Msg("Retrieved title")

	return &title, nil
}

// PersonProfile fetches a person and their combined credits concurrently.
// Cast credits are ordered by popularity.
func (c *Client) PersonProfile(ctx context.Context, id int) (*PersonProfile, error) {
	if !c.HasCredential() {
		return nil, ErrMissingCredential
	}

	var profile PersonProfile
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		person, err := c.Person(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get person: %w", err)
		}
		profile.Person = person
		return nil
	})

	g.Go(func() error {
		credits, err := c.PersonCredits(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get person credits: %w", err)
		}
		SortByPopularity(credits.Cast)
		profile.Credits = credits
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &profile, nil
}
