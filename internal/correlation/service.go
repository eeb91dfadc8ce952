package correlation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/alertlens/alertlens/internal/logger"
	"github.com/alertlens/alertlens/internal/nerdgraph"
	"github.com/alertlens/alertlens/internal/observability"
)

// Client-input validation errors. These are the only failures that reach
// the response boundary; everything else degrades to partial or empty data.
var (
	ErrMissingPolicyID = errors.New("policy id is required")
	ErrInvalidPolicyID = errors.New("policy id must be numeric")
)

var policyIDPattern = regexp.MustCompile(`^[0-9]+$`)

// quotedValueSanitizer strips characters that would break out of a quoted
// GraphQL string when identifiers are embedded in query documents.
var quotedValueSanitizer = strings.NewReplacer(`"`, "", `'`, "", `\`, "")

// ServiceConfig carries the tunables of the correlation service.
type ServiceConfig struct {
	AccountID         string
	MaxPages          int
	EnrichConcurrency int
	// TypeLabels overrides the friendly-type table; nil uses the default.
	TypeLabels map[TypeKey]string
}

// Service derives the correlated alert–entity view on demand. All state is
// request-scoped; nothing is cached between calls.
type Service struct {
	client    *nerdgraph.Client
	accountID string
	maxPages  int
	enricher  *Enricher
	matcher   *Matcher
	metrics   *observability.Metrics
	log       logger.Logger
}

// NewService wires the correlation engine around a NerdGraph client.
func NewService(client *nerdgraph.Client, cfg ServiceConfig, metrics *observability.Metrics, log logger.Logger) *Service {
	s := &Service{
		client:    client,
		accountID: cfg.AccountID,
		maxPages:  cfg.MaxPages,
		matcher:   NewMatcher(cfg.TypeLabels),
		metrics:   metrics,
		log:       log,
	}
	s.enricher = NewEnricher(s.EntityByGUID, cfg.EnrichConcurrency, log)
	return s
}

// AllConditions fetches every alert condition in the account, attaches
// policy names, resolves entity metadata, and formats threshold terms.
// Remote failures yield a partial or empty slice, never an error.
func (s *Service) AllConditions(ctx context.Context) []nerdgraph.AlertCondition {
	conds := nerdgraph.CollectAll(ctx, s.log, s.maxPages,
		func(ctx context.Context, cursor string) (*nerdgraph.Page[nerdgraph.AlertCondition], error) {
			return s.fetchConditionsPage(ctx, "", cursor)
		})
	return s.finishConditions(ctx, conds)
}

// ConditionsByPolicy fetches the conditions of a single policy, enriched
// the same way as AllConditions. A blank or non-numeric policy id is a
// client-input error.
func (s *Service) ConditionsByPolicy(ctx context.Context, policyID string) ([]nerdgraph.AlertCondition, error) {
	policyID = strings.TrimSpace(policyID)
	if policyID == "" {
		return nil, ErrMissingPolicyID
	}
	if !policyIDPattern.MatchString(policyID) {
		return nil, ErrInvalidPolicyID
	}
	conds := nerdgraph.CollectAll(ctx, s.log, s.maxPages,
		func(ctx context.Context, cursor string) (*nerdgraph.Page[nerdgraph.AlertCondition], error) {
			return s.fetchConditionsPage(ctx, policyID, cursor)
		})
	return s.finishConditions(ctx, conds), nil
}

// EntitiesWithAlerts fetches the entity inventory and cross-references it
// with every alert condition in the account.
func (s *Service) EntitiesWithAlerts(ctx context.Context) []CorrelationResult {
	entities := nerdgraph.CollectAll(ctx, s.log, s.maxPages, s.fetchEntitiesPage)
	conds := nerdgraph.CollectAll(ctx, s.log, s.maxPages,
		func(ctx context.Context, cursor string) (*nerdgraph.Page[nerdgraph.AlertCondition], error) {
			return s.fetchConditionsPage(ctx, "", cursor)
		})
	results := s.matcher.Correlate(entities, conds)
	s.metrics.SetCorrelatedEntities(len(results))
	return results
}

// Policies fetches all alert policies of the account.
func (s *Service) Policies(ctx context.Context) []nerdgraph.Policy {
	return nerdgraph.CollectAll(ctx, s.log, s.maxPages, s.fetchPoliciesPage)
}

// PolicyIndex returns the id → name lookup table.
func (s *Service) PolicyIndex(ctx context.Context) map[string]string {
	policies := s.Policies(ctx)
	index := make(map[string]string, len(policies))
	for _, p := range policies {
		index[p.ID] = p.Name
	}
	return index
}

// EntityByGUID looks up the authoritative name/type/domain of one entity.
// A missing entity returns (nil, nil); callers fall back to declared data.
func (s *Service) EntityByGUID(ctx context.Context, guid string) (*nerdgraph.EntityRef, error) {
	query := fmt.Sprintf(`{
  actor {
    entity(guid: "%s") {
      guid
      name
      type
      domain
    }
  }
}`, quotedValueSanitizer.Replace(guid))

	env, err := s.client.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	node := env.DataAt("actor.entity")
	if !node.Exists() || node.Type == gjson.Null {
		return nil, nil
	}
	var ent nerdgraph.EntityRef
	if err := json.Unmarshal([]byte(node.Raw), &ent); err != nil {
		return nil, fmt.Errorf("decode entity: %w", err)
	}
	if ent.GUID == "" {
		ent.GUID = guid
	}
	return &ent, nil
}

// finishConditions attaches policy names, resolves entity metadata under
// the concurrency ceiling, and formats threshold terms for display.
func (s *Service) finishConditions(ctx context.Context, conds []nerdgraph.AlertCondition) []nerdgraph.AlertCondition {
	if len(conds) == 0 {
		return conds
	}
	index := s.PolicyIndex(ctx)
	for i := range conds {
		if name, ok := index[conds[i].PolicyID]; ok {
			conds[i].PolicyName = name
		}
	}
	conds = s.enricher.EnrichConditions(ctx, conds)
	for i := range conds {
		conds[i].FormattedTerms = FormatTerms(conds[i].Terms)
	}
	return conds
}

func (s *Service) fetchConditionsPage(ctx context.Context, policyID, cursor string) (*nerdgraph.Page[nerdgraph.AlertCondition], error) {
	var args []string
	if policyID != "" {
		args = append(args, fmt.Sprintf(`searchCriteria: {policyId: "%s"}`, policyID))
	}
	args = append(args, fmt.Sprintf("cursor: %s", cursorArg(cursor)))

	query := fmt.Sprintf(`{
  actor {
    account(id: %s) {
      alerts {
        nrqlConditionsSearch(%s) {
          nrqlConditions {
            id
            name
            description
            enabled
            type
            runbookUrl
            policyId
            nrql { query }
            terms {
              operator
              threshold
              priority
              thresholdDuration
              thresholdOccurrences
            }
            entity { guid name type domain }
          }
          nextCursor
        }
      }
    }
  }
}`, s.accountID, strings.Join(args, ", "))

	env, err := s.client.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	node := env.DataAt("actor.account.alerts.nrqlConditionsSearch")
	if !node.Exists() {
		return nil, nil
	}

	var conds []nerdgraph.AlertCondition
	if items := node.Get("nrqlConditions"); items.Exists() {
		if err := json.Unmarshal([]byte(items.Raw), &conds); err != nil {
			return nil, fmt.Errorf("decode conditions page: %w", err)
		}
	}
	return &nerdgraph.Page[nerdgraph.AlertCondition]{
		Items:      conds,
		NextCursor: node.Get("nextCursor").String(),
	}, nil
}

func (s *Service) fetchEntitiesPage(ctx context.Context, cursor string) (*nerdgraph.Page[nerdgraph.EntityRef], error) {
	query := fmt.Sprintf(`{
  actor {
    entitySearch(query: "accountId = %s") {
      results(cursor: %s) {
        entities {
          guid
          name
          type
          domain
        }
        nextCursor
      }
    }
  }
}`, s.accountID, cursorArg(cursor))

	env, err := s.client.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	node := env.DataAt("actor.entitySearch.results")
	if !node.Exists() {
		return nil, nil
	}

	var entities []nerdgraph.EntityRef
	if items := node.Get("entities"); items.Exists() {
		if err := json.Unmarshal([]byte(items.Raw), &entities); err != nil {
			return nil, fmt.Errorf("decode entities page: %w", err)
		}
	}
	return &nerdgraph.Page[nerdgraph.EntityRef]{
		Items:      entities,
		NextCursor: node.Get("nextCursor").String(),
	}, nil
}

func (s *Service) fetchPoliciesPage(ctx context.Context, cursor string) (*nerdgraph.Page[nerdgraph.Policy], error) {
	query := fmt.Sprintf(`{
  actor {
    account(id: %s) {
      alerts {
        policiesSearch(cursor: %s) {
          policies {
            id
            name
          }
          nextCursor
        }
      }
    }
  }
}`, s.accountID, cursorArg(cursor))

	env, err := s.client.Execute(ctx, query)
	if err != nil {
		return nil, err
	}
	node := env.DataAt("actor.account.alerts.policiesSearch")
	if !node.Exists() {
		return nil, nil
	}

	var policies []nerdgraph.Policy
	if items := node.Get("policies"); items.Exists() {
		if err := json.Unmarshal([]byte(items.Raw), &policies); err != nil {
			return nil, fmt.Errorf("decode policies page: %w", err)
		}
	}
	return &nerdgraph.Page[nerdgraph.Policy]{
		Items:      policies,
		NextCursor: node.Get("nextCursor").String(),
	}, nil
}

// cursorArg renders a cursor GraphQL argument: null on the first page,
// quoted afterwards.
func cursorArg(cursor string) string {
	if cursor == "" {
		return "null"
	}
	return fmt.Sprintf("%q", quotedValueSanitizer.Replace(cursor))
}
