package trades

import (
	"errors"
	"fmt"
)

// ErrChainCycle reports a trade_parent_id traversal that revisited a
// trade. Validated writes never produce one, but traversal is guarded so
// a corrupted chain surfaces as an anomaly instead of a hang.
var ErrChainCycle = errors.New("roll chain contains a cycle")

// ErrTradeNotFound reports a mutation against a trade ID that does not
// exist.
var ErrTradeNotFound = errors.New("trade not found")

// maxChainLength bounds traversal independently of the visited set.
// No real wheel position rolls this many times.
const maxChainLength = 1000

// Chain resolves the full roll chain containing a trade, root first.
//
// The walk runs backward through trade_parent_id to the chain root, then
// forward choosing the earliest-dated unvisited successor at each link.
// A sibling sharing the same parent is a separate, unchained position and
// is left out so nothing is counted twice. Only the terminal non-rolled
// trade of the returned chain feeds open/closed aggregates.
func (s *Service) Chain(tradeID int64) ([]Trade, error) {
	trade, err := s.repo.GetByID(tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, nil
	}

	root, err := s.chainRoot(trade)
	if err != nil {
		return nil, err
	}

	visited := map[int64]bool{root.ID: true}
	chain := []Trade{*root}
	current := root

	for len(chain) < maxChainLength {
		children, err := s.repo.GetChildren(current.ID)
		if err != nil {
			return nil, err
		}

		// Children arrive ordered by (trade_date, seq); the first
		// unvisited one continues the chain.
		var next *Trade
		for i := range children {
			if !visited[children[i].ID] {
				next = &children[i]
				break
			}
		}
		if next == nil {
			return chain, nil
		}

		visited[next.ID] = true
		chain = append(chain, *next)
		current = next
	}

	return nil, fmt.Errorf("trade %d: chain exceeds %d links: %w", tradeID, maxChainLength, ErrChainCycle)
}

// chainRoot walks trade_parent_id backward to the first trade without a
// parent, guarding against revisits.
func (s *Service) chainRoot(trade *Trade) (*Trade, error) {
	visited := map[int64]bool{trade.ID: true}
	current := trade

	for current.TradeParentID != nil {
		parent, err := s.repo.GetByID(*current.TradeParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			// Dangling parent reference: treat the current trade as root.
			return current, nil
		}
		if visited[parent.ID] {
			return nil, fmt.Errorf("trade %d: %w", parent.ID, ErrChainCycle)
		}
		visited[parent.ID] = true
		current = parent
	}

	return current, nil
}

// ChainTerminal returns the last link of a trade's roll chain: the one
// trade of the chain that counts toward open/closed totals. All rolled
// links before it are excluded from aggregation.
func (s *Service) ChainTerminal(tradeID int64) (*Trade, error) {
	chain, err := s.Chain(tradeID)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return &chain[len(chain)-1], nil
}
