package dynamodb

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// PK/SK prefix constants. Single-table layout:
//
//	EXP#<id>    / EXP#<id>                  truth item for one experiment
//	PAGE#<url>  / EXP#<createdAt>#<id>      per-page list copy
//	EXP#<id>    / CHANGE#<createdAt>#<cid>  child change rows
//	SCORE#<url> / SCORE#<date>#<nonce>      append-only score history
//
// Truth items also carry GSI1PK=TYPE#EXPERIMENT keyed by creation time for
// cross-page listing; change rows carry GSI1PK=TYPE#CHANGE for the
// per-element aggregation query.
const (
	prefixExperiment = "EXP#"
	prefixPage       = "PAGE#"
	prefixChange     = "CHANGE#"
	prefixScore      = "SCORE#"
	prefixType       = "TYPE#"

	typeExperiment = prefixType + "EXPERIMENT"
	typeChange     = prefixType + "CHANGE"
)

func experimentPK(id string) string { return prefixExperiment + id }
func pagePK(pageURL string) string  { return prefixPage + pageURL }
func scorePK(pageURL string) string { return prefixScore + pageURL }

func experimentTruthSK(id string) string { return prefixExperiment + id }

func experimentListSK(createdAt time.Time, id string) string {
	return prefixExperiment + createdAt.UTC().Format(time.RFC3339Nano) + "#" + id
}

func experimentGSISK(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(time.RFC3339Nano) + "#" + id
}

func changeSK(createdAt time.Time, changeID string) string {
	return prefixChange + createdAt.UTC().Format(time.RFC3339Nano) + "#" + changeID
}

func scoreSK(date string, ts time.Time) string {
	nonce := make([]byte, 4)
	_, _ = rand.Read(nonce)
	return fmt.Sprintf("%s%s#%013d#%s", prefixScore, date, ts.UnixMilli(), hex.EncodeToString(nonce))
}

// newExperimentID builds an id from the page slug plus creation nanos.
func newExperimentID(pageSlug string, createdAt time.Time) string {
	return fmt.Sprintf("%s-%d", pageSlug, createdAt.UTC().UnixNano())
}

// newChangeID builds a change id from its insertion nanos plus a nonce.
func newChangeID(createdAt time.Time) string {
	nonce := make([]byte, 4)
	_, _ = rand.Read(nonce)
	return fmt.Sprintf("%d-%s", createdAt.UTC().UnixNano(), hex.EncodeToString(nonce))
}
