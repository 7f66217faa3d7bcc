package topics

const (
	// Snapshots de odds atualizados com sucesso
	OddsSnapshots = "odds_snapshots"

	// Canal Redis Pub/Sub consumido pelo hub WebSocket
	OddsSnapshotsBroadcast = "odds_snapshots_broadcast"
)
