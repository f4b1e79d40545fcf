package report

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"ShortageWatcher/internal/domain"
)

// LineName identifies the line inventory report.
const LineName = "line"

const linePrefix = `WITH StandbyInventory AS (
    SELECT ITMNO, WARHS AS LINE, SUM(JQTY) AS STANDBY_QTY
    FROM SAG.dbo.MAT_ITMBLPFSUB
    WHERE %s AND JQTY > 0
    GROUP BY ITMNO, WARHS
),
LotInInventory AS (
    SELECT LINE, ITMNO, SUM(J_QTY) AS LOTIN_QTY
    FROM SAG.dbo.PRD_LOTIN
    WHERE %s AND J_QTY > 0
    GROUP BY ITMNO, LINE
),
TotalInventory AS (
    SELECT
        COALESCE(s.LINE, l.LINE) AS LINE,
        COALESCE(s.ITMNO, l.ITMNO) AS ITMNO,
        COALESCE(s.STANDBY_QTY, 0) AS STANDBY_QTY,
        COALESCE(l.LOTIN_QTY, 0) AS LOTIN_QTY,
        COALESCE(s.STANDBY_QTY, 0) + COALESCE(l.LOTIN_QTY, 0) AS TOTAL_QTY
    FROM StandbyInventory s
    FULL JOIN LotInInventory l
        ON s.ITMNO = l.ITMNO
        AND s.LINE = l.LINE
),
ProductionPlanConverted AS (
    SELECT
        p.RDATE,
        p.WRK_CD AS LINE,
        b.CITEM AS ITMNO,
        SUM(p.PL_QTY * b.[QTY]) AS REQUIRED_QTY,
        SUM(p.RH_QTY * b.[QTY]) AS USED_QTY
    FROM SAG.dbo.PRD_PRDPDPF p
    JOIN SAG.dbo.BAS_BOM_JORIP b
        ON p.ITMNO = b.ITMNO
    WHERE p.RDATE = CONVERT(VARCHAR(8), GETDATE(), 112)
      AND %s
    GROUP BY p.RDATE, p.WRK_CD, b.CITEM
)`

const expectedRemaining = "(COALESCE(i.TOTAL_QTY, 0) - COALESCE(p.REQUIRED_QTY, 0) + COALESCE(p.USED_QTY, 0))"

// Line compares standby plus lot-in stock per line and item against today's
// plan and keeps items expected to run out. Rows come back in no particular order.
func Line() Report {
	standbyFilter, standbyArgs := lineFilter("WARHS")
	lotInFilter, lotInArgs := lineFilter("LINE")
	planFilter, planArgs := lineFilter("p.WRK_CD")

	args := make([]interface{}, 0, len(standbyArgs)+len(lotInArgs)+len(planArgs))
	args = append(args, standbyArgs...)
	args = append(args, lotInArgs...)
	args = append(args, planArgs...)

	stmt := sq.Select(
		"COALESCE(p.RDATE, CONVERT(VARCHAR(8), GETDATE(), 112)) AS RDATE",
		"COALESCE(i.LINE, p.LINE) AS LINE",
		"'' AS SERNO",
		"'' AS WRKSTS",
		"'' AS PARENT_ITMNO",
		"COALESCE(i.ITMNO, p.ITMNO) AS ITMNO",
		"itm.ITM_NM AS ITM_NM",
		"COALESCE(p.REQUIRED_QTY, 0) AS REQUIRED_QTY",
		"COALESCE(p.USED_QTY, 0) AS USED_QTY",
		"COALESCE(i.TOTAL_QTY, 0) AS ONHAND_QTY",
		"COALESCE(i.STANDBY_QTY, 0) AS STANDBY_QTY",
		"COALESCE(i.LOTIN_QTY, 0) AS LOTIN_QTY",
	).
		Prefix(fmt.Sprintf(linePrefix, standbyFilter, lotInFilter, planFilter), args...).
		From("TotalInventory i").
		JoinClause("FULL JOIN ProductionPlanConverted p ON i.ITMNO = p.ITMNO AND i.LINE = p.LINE").
		LeftJoin("SAG.dbo.BAS_ITMSTPF itm ON COALESCE(i.ITMNO, p.ITMNO) = itm.ITMNO").
		Where(expectedRemaining + " < 0").
		PlaceholderFormat(sq.AtP)

	return Report{
		Name: LineName,
		Messages: Messages{
			Started:       "🟢 *라인 재고 감시 프로그램 시작!*",
			CheckStarting: "🔄 *라인 재고 감시 시작...*",
			Header:        "*🚨 재고 부족 경고! 🚨*",
			AllSufficient: "✅ *재고 감시 완료: 모든 재고가 충분합니다.*",
			Failed:        "❌ *재고 감시 오류 발생!*",
			Completed:     "✅ *라인 재고 감시 완료!* 다음 감시는 *%s* 에 시작됩니다. 🕒",
			Stopping:      "🔴 *라인 재고 감시 프로그램 종료!*",
		},
		Statement: stmt,
		Block:     lineBlock,
	}
}

func lineBlock(row domain.ShortageRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *품번:* %s (%s)\n", row.Item, row.ItemName)
	fmt.Fprintf(&b, "🏭 *라인:* %s\n", row.Line)
	fmt.Fprintf(&b, "📊 *총 재고:* %s\n", row.OnHand)
	fmt.Fprintf(&b, "📉 *필요 수량:* %s\n", row.Outstanding())
	fmt.Fprintf(&b, "⚠️ *부족 수량:* %s\n", row.Shortage())
	fmt.Fprintf(&b, "⚠️ *예상 잔여 재고:* %s\n", row.ExpectedRemaining())
	return b.String()
}
