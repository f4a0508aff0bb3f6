package muleguard

// AdjacencyIndex is the directed sender -> receiver -> transactions graph
// index described in spec §4.2, plus the per-account statistics table used
// by every downstream detector. Keys are visited in the order each account
// is first encountered in the transaction stream (spec §5 determinism
// requirement), grounded on the node/edge map construction in the lineage
// project's ForensicService.BuildTransactionGraph (forensic.go).
type AdjacencyIndex struct {
	// Senders lists every account that originates at least one transaction,
	// in first-encountered order.
	Senders []string

	// adjacency[sender][receiver] is the list of transactions from sender to
	// receiver, in input order.
	adjacency map[string]*orderedMap[[]Transaction]

	Stats *orderedMap[AccountStats]
}

// Out returns the receivers reachable from sender in insertion order.
func (idx *AdjacencyIndex) Out(sender string) []string {
	m, ok := idx.adjacency[sender]
	if !ok {
		return nil
	}
	return m.Keys()
}

// Edges returns the transactions recorded from sender to receiver.
func (idx *AdjacencyIndex) Edges(sender, receiver string) []Transaction {
	m, ok := idx.adjacency[sender]
	if !ok {
		return nil
	}
	txs := m.MustGet(receiver)
	if txs == nil {
		return nil
	}
	return *txs
}

// computeStats folds a transaction slice into per-account aggregate
// statistics, in the insertion order each account is first seen as either
// sender or receiver. Used both for the unfiltered universe (legitimacy
// filter, projection) and for the filtered set (BuildIndex).
func computeStats(transactions []Transaction) *orderedMap[AccountStats] {
	stats := newOrderedMap[AccountStats]()
	for _, tx := range transactions {
		sender := stats.GetOrInit(tx.SenderID)
		sender.TotalSent += tx.Amount
		sender.SendCount++
		sender.SentAmounts = append(sender.SentAmounts, tx.Amount)
		if sender.UniqueReceivers == nil {
			sender.UniqueReceivers = newOrderedSet()
		}
		sender.UniqueReceivers.Add(tx.ReceiverID)

		receiver := stats.GetOrInit(tx.ReceiverID)
		receiver.TotalReceived += tx.Amount
		receiver.ReceiveCount++
		receiver.ReceivedAmounts = append(receiver.ReceivedAmounts, tx.Amount)
		if receiver.UniqueSenders == nil {
			receiver.UniqueSenders = newOrderedSet()
		}
		receiver.UniqueSenders.Add(tx.SenderID)
	}
	return stats
}

// BuildIndex builds the adjacency index and aggregate statistics over the
// filtered transaction set (spec §4.2). O(N) time, O(N+A) memory.
func BuildIndex(transactions []Transaction) *AdjacencyIndex {
	idx := &AdjacencyIndex{
		adjacency: make(map[string]*orderedMap[[]Transaction]),
		Stats:     computeStats(transactions),
	}

	seenSenders := newOrderedSet()
	for _, tx := range transactions {
		m, ok := idx.adjacency[tx.SenderID]
		if !ok {
			m = newOrderedMap[[]Transaction]()
			idx.adjacency[tx.SenderID] = m
		}
		bucket := m.GetOrInit(tx.ReceiverID)
		*bucket = append(*bucket, tx)
		if seenSenders.Add(tx.SenderID) {
			idx.Senders = append(idx.Senders, tx.SenderID)
		}
	}
	return idx
}
