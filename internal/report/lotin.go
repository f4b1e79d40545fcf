package report

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"ShortageWatcher/internal/domain"
)

// LotInName identifies the lot-in inventory report.
const LotInName = "lotin"

const lotInPrefix = `WITH REQUIRED_MATERIAL AS (
    SELECT
        P.RDATE,
        P.WRK_CD AS LINE,
        P.SERNO,
        RTRIM(P.ITMNO) AS ITMNO,
        COALESCE(NULLIF(RTRIM(P.WRKSTS), ''), 'PENDING') AS WRKSTS,
        B.CITEM,
        ((P.PL_QTY - P.RH_QTY) * B.QTY) AS REQUIRED_MATERIAL_QTY
    FROM SAG.dbo.PRD_PRDPDPF P
    JOIN SAG.dbo.BAS_BOM_JORIP B
        ON P.WRK_CD = B.LINE
        AND P.ITMNO = B.ITMNO
    WHERE P.RDATE = CONVERT(VARCHAR(8), GETDATE(), 112)
),
CURRENT_MATERIAL AS (
    SELECT LINE, ITMNO AS CITEM, SUM(J_QTY) AS CURRENT_MATERIAL_QTY
    FROM SAG.dbo.PRD_LOTIN
    WHERE %s AND J_QTY > 0
    GROUP BY ITMNO, LINE
)`

// LotIn compares today's remaining BOM requirement of every plan row against
// the material staged on its line. Running jobs sort first, then line and sequence.
func LotIn() Report {
	filter, args := lineFilter("LINE")

	stmt := sq.Select(
		"RM.RDATE AS RDATE",
		"RM.LINE AS LINE",
		"RM.SERNO AS SERNO",
		"RM.WRKSTS AS WRKSTS",
		"RM.ITMNO AS PARENT_ITMNO",
		"RM.CITEM AS ITMNO",
		"ITM.ITM_NM AS ITM_NM",
		"RM.REQUIRED_MATERIAL_QTY AS REQUIRED_QTY",
		"0 AS USED_QTY",
		"COALESCE(CM.CURRENT_MATERIAL_QTY, 0) AS ONHAND_QTY",
		"0 AS STANDBY_QTY",
		"COALESCE(CM.CURRENT_MATERIAL_QTY, 0) AS LOTIN_QTY",
	).
		Prefix(fmt.Sprintf(lotInPrefix, filter), args...).
		From("REQUIRED_MATERIAL RM").
		LeftJoin("CURRENT_MATERIAL CM ON RM.LINE = CM.LINE AND RM.CITEM = CM.CITEM").
		LeftJoin("SAG.dbo.BAS_ITMSTPF ITM ON RM.CITEM = ITM.ITMNO").
		Where("(RM.REQUIRED_MATERIAL_QTY - COALESCE(CM.CURRENT_MATERIAL_QTY, 0)) > 0").
		OrderBy(
			"CASE WHEN RM.WRKSTS = 'W' THEN 1 ELSE 2 END",
			"RM.LINE",
			"RM.SERNO",
		).
		PlaceholderFormat(sq.AtP)

	return Report{
		Name: LotInName,
		Messages: Messages{
			Started:       "🟢 *로뜨인 재고 감시 프로그램 시작!*",
			CheckStarting: "🔄 *로뜨인 재고 감시 시작...*",
			Header:        "*🚨 로뜨인 재고 부족 경고! 🚨*",
			AllSufficient: "✅ *로뜨인 재고 감시 완료: 모든 재고가 충분합니다.*",
			Failed:        "❌ *로뜨인 재고 감시 오류 발생!*",
			Completed:     "✅ *로뜨인 재고 감시 완료!* 다음 감시는 *%s* 에 시작됩니다. 🕒",
			Stopping:      "🔴 *로뜨인 재고 감시 프로그램 종료!*",
		},
		Statement: stmt,
		Group:     groupByWorkStatus,
		Block:     lotInBlock,
	}
}

// groupByWorkStatus splits rows into running and pending jobs, keeping input order.
func groupByWorkStatus(rows []domain.ShortageRow) []Section {
	working := Section{Title: "🔹 *현재 작업 중*"}
	pending := Section{Title: "🔹 *다음 작업 예정*"}
	for _, row := range rows {
		if row.InProgress() {
			working.Rows = append(working.Rows, row)
		} else {
			pending.Rows = append(pending.Rows, row)
		}
	}
	return []Section{working, pending}
}

func lotInBlock(row domain.ShortageRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *품번:* %s (%s)\n", row.Item, row.ItemName)
	fmt.Fprintf(&b, "🏭 *라인:* %s (%s)\n", row.Line, row.ProductItem)
	fmt.Fprintf(&b, "🏭 *작업순번:* %s\n", row.Sequence)
	fmt.Fprintf(&b, "📊 *현재 수량:* %s\n", row.OnHand)
	fmt.Fprintf(&b, "📉 *필요 수량:* %s\n", row.Required)
	fmt.Fprintf(&b, "⚠️ *부족 수량:* %s\n", row.Shortage())
	return b.String()
}
