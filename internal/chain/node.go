package chain

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// NodeConfig holds node height source configuration
type NodeConfig struct {
	NodeURL        string        `json:"node_url"`
	PollInterval   time.Duration `json:"poll_interval"`
	RequestTimeout time.Duration `json:"request_timeout"`
	StartHeight    uint64        `json:"start_height"`
}

// NodeSource supplies the ledger height by polling an RPC node's latest block
// number. The cached height never regresses, so a short-lived reorg to a
// lower chain tip is clamped rather than propagated.
type NodeSource struct {
	config *NodeConfig
	client *ethclient.Client
	logger *logrus.Entry

	height   atomic.Uint64
	lastPoll atomic.Int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewNodeSource creates a new node-backed height source
func NewNodeSource(config *NodeConfig) *NodeSource {
	s := &NodeSource{
		config: config,
		logger: utils.GetLogger().WithField("component", "chain"),
	}
	s.height.Store(config.StartHeight)
	return s
}

// Connect dials the RPC node
func (s *NodeSource) Connect(ctx context.Context) error {
	client, err := ethclient.DialContext(ctx, s.config.NodeURL)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeBlockchain, "Failed to connect to node", err.Error())
	}

	s.client = client
	s.logger.WithField("node_url", s.config.NodeURL).Info("Node connected")
	return nil
}

// Start begins the polling loop
func (s *NodeSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.client == nil {
		return utils.NewAppError(utils.ErrCodeBlockchain, "Node not connected", "")
	}

	pollCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.pollLoop(pollCtx)

	s.logger.WithField("poll_interval", s.config.PollInterval.String()).Info("Height polling started")
	return nil
}

// Stop stops the polling loop and closes the client
func (s *NodeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()
	<-s.done
	s.running = false

	if s.client != nil {
		s.client.Close()
	}

	s.logger.Info("Height polling stopped")
	return nil
}

// CurrentHeight returns the latest observed ledger height
func (s *NodeSource) CurrentHeight() uint64 {
	return s.height.Load()
}

// IsHealthy reports whether a poll succeeded recently
func (s *NodeSource) IsHealthy() bool {
	last := s.lastPoll.Load()
	if last == 0 {
		return false
	}
	return time.Since(time.Unix(last, 0)) < 3*s.config.PollInterval
}

func (s *NodeSource) pollLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	// Prime the height before the first tick
	s.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *NodeSource) poll(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
	defer cancel()

	header, err := s.client.HeaderByNumber(reqCtx, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to fetch latest header")
		return
	}

	observed := header.Number.Uint64()
	s.lastPoll.Store(time.Now().Unix())

	for {
		current := s.height.Load()
		if observed <= current {
			if observed < current {
				s.logger.WithFields(logrus.Fields{
					"observed": observed,
					"current":  current,
				}).Warn("Node reported lower height, keeping current")
			}
			return
		}
		if s.height.CompareAndSwap(current, observed) {
			s.logger.WithField("height", observed).Debug("Ledger height advanced")
			return
		}
	}
}
