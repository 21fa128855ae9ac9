package service

import (
	"context"
	"strings"

	perr "indexa/internal/platform/errors"
	indexingdom "indexa/internal/services/indexing/domain"
	registrydom "indexa/internal/services/registry/domain"
	"indexa/internal/services/reindex/domain"
)

const perPage = 100

// Execute runs a job to a terminal status.
// On failure the status and error message are recorded before the error
// propagates, so the task runner and the stored job agree on the outcome
func (s *Svc) Execute(ctx context.Context, jobID string) error {
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != domain.StatusPending && job.Status != domain.StatusRunning {
		return perr.InvalidArgf("cannot run job with status %s", job.Status)
	}

	if err := s.Repo.UpdateStatus(ctx, jobID, domain.StatusRunning, ""); err != nil {
		return err
	}

	s.log.Info().Str("job_id", jobID).Msg("reindex job started")
	if err := s.runJob(ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("reindex job failed")
		if uerr := s.Repo.UpdateStatus(ctx, jobID, domain.StatusFailed, err.Error()); uerr != nil {
			s.log.Error().Err(uerr).Str("job_id", jobID).Msg("failed status update lost")
		}
		return err
	}

	if err := s.Repo.UpdateStatus(ctx, jobID, domain.StatusCompleted, ""); err != nil {
		return err
	}
	if err := s.Repo.UpdateProgress(ctx, jobID, 1.0); err != nil {
		return err
	}
	s.log.Info().Str("job_id", jobID).Msg("reindex job completed")
	return nil
}

func (s *Svc) runJob(ctx context.Context, job domain.ReindexJob) error {
	services, err := s.services.ListEnabled(ctx)
	if err != nil {
		return err
	}
	services = filterServices(services, job.Domains)

	totalIndexed := 0
	totalFailed := 0

	for _, svc := range services {
		// a job without explicit entity types contributes nothing for the
		// service, there is no "all types" discovery
		for _, entityType := range job.EntityTypes {
			page := 1
			for {
				res, err := s.indexer.BatchIndex(ctx, svc, entityType, indexingdom.BatchArgs{
					UpdatedAfter:  job.UpdatedAfter,
					UpdatedBefore: job.UpdatedBefore,
					Page:          page,
					PerPage:       perPage,
				})
				if err != nil {
					return err
				}
				totalIndexed += res.Indexed
				totalFailed += res.Failed

				// rough non-authoritative estimate, capped below 1.0 until
				// final completion sets it explicitly
				progress := float64(page*perPage) / 10000.0
				if progress > 0.9 {
					progress = 0.9
				}
				if err := s.Repo.UpdateProgress(ctx, job.ID, progress); err != nil {
					return err
				}

				if res.TotalInPage < perPage {
					break
				}
				page++
			}
		}
	}

	s.log.Info().
		Str("job_id", job.ID).
		Int("indexed", totalIndexed).
		Int("failed", totalFailed).
		Msg("reindex job pages done")
	return nil
}

// filterServices keeps the services whose any domain overlaps any requested
// filter as a prefix, in either direction. An empty filter keeps everything
func filterServices(
	services []registrydom.DomainService, filters []string,
) []registrydom.DomainService {
	if len(filters) == 0 {
		return services
	}
	out := make([]registrydom.DomainService, 0, len(services))
	for _, svc := range services {
		if serviceMatchesFilters(svc, filters) {
			out = append(out, svc)
		}
	}
	return out
}

func serviceMatchesFilters(svc registrydom.DomainService, filters []string) bool {
	for _, d := range svc.Domains {
		for _, f := range filters {
			if strings.HasPrefix(f, d) || strings.HasPrefix(d, f) {
				return true
			}
		}
	}
	return false
}
