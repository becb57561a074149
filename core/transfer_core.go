package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	ether "github.com/ethereum/go-ethereum"
	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/karangoraniya/subscription-icp/blockchain"
	"github.com/karangoraniya/subscription-icp/common"
	cblockchain "github.com/karangoraniya/subscription-icp/common/blockchain"
)

const transferAction = "transfer"

// TransferCore runs transfer attempts: resolve nonce, build, sign, broadcast,
// look up, and commit the mined nonce on confirmation. Only one attempt runs
// at a time.
type TransferCore struct {
	blockchain      Blockchain
	builder         TransactionBuilder
	signer          cblockchain.Signer
	nonceCorpus     cblockchain.NonceCorpus
	activityStorage ActivityStorage
	alerter         common.Alerter
	setting         TransferSetting

	inFlight atomic.Bool
}

func NewTransferCore(
	blockchain Blockchain,
	builder TransactionBuilder,
	signer cblockchain.Signer,
	nonceCorpus cblockchain.NonceCorpus,
	storage ActivityStorage,
	alerter common.Alerter,
	setting TransferSetting) *TransferCore {
	return &TransferCore{
		blockchain:      blockchain,
		builder:         builder,
		signer:          signer,
		nonceCorpus:     nonceCorpus,
		activityStorage: storage,
		alerter:         alerter,
		setting:         setting,
	}
}

func timebasedID(id string) common.ActivityID {
	return common.NewActivityID(uint64(time.Now().UnixNano()), id)
}

func (self *TransferCore) GetAddress() ethereum.Address {
	return self.signer.GetAddress()
}

// NonceState returns the last confirmed nonce of the sending account.
func (self *TransferCore) NonceState() common.NonceState {
	return self.nonceCorpus.State()
}

func (self *TransferCore) GetRecords(fromTime, toTime uint64) ([]common.ActivityRecord, error) {
	return self.activityStorage.GetAllRecords(fromTime, toTime)
}

func (self *TransferCore) GetPendingActivities() ([]common.ActivityRecord, error) {
	return self.activityStorage.GetPendingActivities()
}

// Transfer runs one attempt to its terminal state. It returns a skipped
// outcome without touching the network if an attempt is already running.
func (self *TransferCore) Transfer(ctx context.Context) common.TransferOutcome {
	if !self.inFlight.CompareAndSwap(false, true) {
		log.Printf("Core ----------> Transfer skipped: %s", ErrAttemptInFlight)
		return common.TransferOutcome{Kind: common.OutcomeSkipped, Err: ErrAttemptInFlight}
	}
	defer self.inFlight.Store(false)

	timepoint := common.GetTimepoint()
	sender := self.signer.GetAddress()
	resolution := self.nonceCorpus.GetNextNonce(ctx)
	intent := blockchain.TransferIntent{
		Token:   self.setting.Token,
		Sender:  sender,
		From:    self.setting.From,
		To:      self.setting.To,
		Amount:  self.setting.Amount,
		ChainID: self.setting.ChainID,
		Nonce:   resolution.Nonce,
	}
	outcome := self.submit(ctx, intent, resolution)
	self.recordActivity(intent, outcome, timepoint)
	if outcome.Succeeded() {
		if err := self.activityStorage.ResolvePending(outcome.MinedNonce); err != nil {
			log.Printf("failed to resolve pending activities: %s", err)
		}
	}
	return outcome
}

func (self *TransferCore) submit(
	ctx context.Context,
	intent blockchain.TransferIntent,
	resolution common.NonceResolution) common.TransferOutcome {
	outcome := common.TransferOutcome{Nonce: resolution}
	failed := func(stage common.Stage, kind error, err error) common.TransferOutcome {
		outcome.Kind = common.OutcomeRPCFailure
		outcome.Stage = stage
		outcome.Err = fmt.Errorf("%w: %s", kind, err)
		return outcome
	}

	tx, err := self.builder.Build(ctx, intent)
	if err != nil {
		return failed(common.StageBuild, ErrBuild, err)
	}
	signed, err := self.signer.Sign(tx)
	if err != nil {
		return failed(common.StageSign, ErrSign, err)
	}
	if signed.ChainId().Cmp(intent.ChainID) != 0 {
		return failed(common.StageSign, ErrSign,
			fmt.Errorf("signed for chain %s, expected %s", signed.ChainId(), intent.ChainID))
	}
	outcome.TxHash = signed.Hash()
	if err = self.blockchain.SendTransaction(ctx, signed); err != nil {
		return failed(common.StageBroadcast, ErrBroadcast, err)
	}

	found, pending, err := self.blockchain.TransactionByHash(ctx, outcome.TxHash)
	if errors.Is(err, ether.NotFound) || (err == nil && found == nil) {
		outcome.Kind = common.OutcomeNotFound
		outcome.Err = fmt.Errorf("%w: %s", ErrNotFound, outcome.TxHash.Hex())
		return outcome
	}
	if err != nil {
		return failed(common.StageLookup, ErrLookup, err)
	}

	outcome.MinedNonce = found.Nonce()
	outcome.Pending = pending
	if outcome.MinedNonce != intent.Nonce {
		outcome.Kind = common.OutcomeIntegrityFault
		outcome.Err = fmt.Errorf("%w: tx %s requested %d, node reported %d",
			ErrNonceMismatch, outcome.TxHash.Hex(), intent.Nonce, outcome.MinedNonce)
		self.alert(outcome)
		return outcome
	}
	if err = self.nonceCorpus.MinedNonce(outcome.MinedNonce); err != nil {
		outcome.Kind = common.OutcomeIntegrityFault
		outcome.Err = fmt.Errorf("tx %s: %w", outcome.TxHash.Hex(), err)
		self.alert(outcome)
		return outcome
	}
	outcome.Kind = common.OutcomeConfirmed
	return outcome
}

func (self *TransferCore) alert(outcome common.TransferOutcome) {
	if self.alerter == nil {
		return
	}
	self.alerter.Alert(outcome.Err, map[string]string{
		"tx":          outcome.TxHash.Hex(),
		"nonce":       strconv.FormatUint(outcome.Nonce.Nonce, 10),
		"mined_nonce": strconv.FormatUint(outcome.MinedNonce, 10),
	})
}

func miningStatus(outcome common.TransferOutcome) string {
	switch outcome.Kind {
	case common.OutcomeConfirmed:
		return common.MiningStatusMined
	case common.OutcomeNotFound, common.OutcomeIntegrityFault:
		return common.MiningStatusSubmitted
	case common.OutcomeRPCFailure:
		if outcome.Stage == common.StageLookup {
			return common.MiningStatusSubmitted
		}
	}
	return common.MiningStatusFailed
}

func (self *TransferCore) recordActivity(intent blockchain.TransferIntent, outcome common.TransferOutcome, timepoint uint64) {
	var txhex string
	if outcome.TxHash != (ethereum.Hash{}) {
		txhex = outcome.TxHash.Hex()
	}
	log.Printf(
		"Core ----------> Transfer %s from %s to %s: nonce: %d (%s), timestamp: %d ==> Result: outcome: %s, stage: %s, tx: %s, mined nonce: %d, error: %v",
		intent.Amount.Text(10), intent.From.Hex(), intent.To.Hex(),
		outcome.Nonce.Nonce, outcome.Nonce.Source, timepoint,
		outcome.Kind, outcome.Stage, txhex, outcome.MinedNonce, outcome.Err,
	)
	if outcome.Nonce.Source == common.NonceFallback {
		log.Printf("WARNING: transfer used fallback nonce 0 because the transaction count query failed: %s", outcome.Nonce.QueryErr)
	}

	err := self.activityStorage.Record(
		transferAction,
		timebasedID(txhex),
		intent.To.Hex(),
		map[string]interface{}{
			"token":     intent.Token.Hex(),
			"sender":    intent.Sender.Hex(),
			"from":      intent.From.Hex(),
			"to":        intent.To.Hex(),
			"amount":    intent.Amount.Text(10),
			"chain_id":  intent.ChainID.Text(10),
			"nonce":     intent.Nonce,
			"timepoint": timepoint,
		}, map[string]interface{}{
			"outcome":           string(outcome.Kind),
			"stage":             string(outcome.Stage),
			"tx":                txhex,
			"nonce_source":      string(outcome.Nonce.Source),
			"nonce_query_error": common.ErrorToString(outcome.Nonce.QueryErr),
			"mined_nonce":       outcome.MinedNonce,
			"pending":           outcome.Pending,
			"error":             common.ErrorToString(outcome.Err),
		},
		miningStatus(outcome),
		timepoint,
	)
	if err != nil {
		log.Printf("failed to save activity record: %s", err)
	}
}
