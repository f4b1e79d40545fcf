package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ShortageWatcher/internal/domain"
)

func lotInRow(line, seq, status, item string, required, onHand int64) domain.ShortageRow {
	return domain.ShortageRow{
		Date:        "20261015",
		Line:        line,
		Sequence:    seq,
		WorkStatus:  status,
		ProductItem: "P-" + item,
		Item:        item,
		ItemName:    "name-" + item,
		Required:    decimal.NewFromInt(required),
		OnHand:      decimal.NewFromInt(onHand),
		LotIn:       decimal.NewFromInt(onHand),
	}
}

func TestFormatEmptyRows(t *testing.T) {
	t.Parallel()

	for _, rep := range []Report{LotIn(), Line()} {
		assert.Equal(t, rep.Messages.AllSufficient, rep.Format(nil), rep.Name)
		assert.Equal(t, rep.Messages.AllSufficient, rep.Format([]domain.ShortageRow{}), rep.Name)
	}
}

func TestLotInFormatExampleBlock(t *testing.T) {
	t.Parallel()

	row := lotInRow("F01", "3", domain.StatusPending, "A100", 50, 30)
	row.ItemName = "Widget"

	got := LotIn().Format([]domain.ShortageRow{row})

	want := "*🚨 로뜨인 재고 부족 경고! 🚨*\n" +
		"🔹 *다음 작업 예정*\n" +
		"📦 *품번:* A100 (Widget)\n" +
		"🏭 *라인:* F01 (P-A100)\n" +
		"🏭 *작업순번:* 3\n" +
		"📊 *현재 수량:* 30\n" +
		"📉 *필요 수량:* 50\n" +
		"⚠️ *부족 수량:* 20\n\n"
	assert.Equal(t, want, got)
}

func TestLotInSectionsOrderAndMembership(t *testing.T) {
	t.Parallel()

	rows := []domain.ShortageRow{
		lotInRow("C01", "1", domain.StatusPending, "P1", 10, 0),
		lotInRow("F01", "2", domain.StatusInProgress, "W1", 10, 0),
		lotInRow("F01", "5", "E", "P2", 10, 0),
		lotInRow("R01", "1", domain.StatusInProgress, "W2", 10, 0),
		lotInRow("R01", "4", domain.StatusPending, "P3", 10, 0),
	}

	got := LotIn().Format(rows)

	working := strings.Index(got, "현재 작업 중")
	pending := strings.Index(got, "다음 작업 예정")
	require.NotEqual(t, -1, working)
	require.NotEqual(t, -1, pending)
	assert.Less(t, working, pending)

	workingText, pendingText := got[working:pending], got[pending:]
	for _, item := range []string{"W1", "W2"} {
		assert.Contains(t, workingText, "*품번:* "+item+" ")
		assert.NotContains(t, pendingText, "*품번:* "+item+" ")
	}
	for _, item := range []string{"P1", "P2", "P3"} {
		assert.Contains(t, pendingText, "*품번:* "+item+" ")
		assert.NotContains(t, workingText, "*품번:* "+item+" ")
	}

	assert.Less(t, strings.Index(workingText, "W1"), strings.Index(workingText, "W2"))
	assert.Less(t, strings.Index(pendingText, "P1"), strings.Index(pendingText, "P2"))
	assert.Less(t, strings.Index(pendingText, "P2"), strings.Index(pendingText, "P3"))
}

func TestLotInOmitsEmptySection(t *testing.T) {
	t.Parallel()

	onlyPending := LotIn().Format([]domain.ShortageRow{lotInRow("F01", "1", domain.StatusPending, "A", 5, 1)})
	assert.NotContains(t, onlyPending, "현재 작업 중")
	assert.Contains(t, onlyPending, "다음 작업 예정")

	onlyWorking := LotIn().Format([]domain.ShortageRow{lotInRow("F01", "1", domain.StatusInProgress, "A", 5, 1)})
	assert.Contains(t, onlyWorking, "현재 작업 중")
	assert.NotContains(t, onlyWorking, "다음 작업 예정")
}

func TestLineFormat(t *testing.T) {
	t.Parallel()

	rows := []domain.ShortageRow{
		{Line: "R01", Item: "M-200", ItemName: "Bracket", Required: decimal.NewFromInt(120), Used: decimal.NewFromInt(40), OnHand: decimal.NewFromInt(50)},
		{Line: "F31", Item: "M-100", ItemName: "Bolt", Required: decimal.NewFromInt(10), OnHand: decimal.Zero},
	}

	got := Line().Format(rows)

	want := "*🚨 재고 부족 경고! 🚨*\n" +
		"📦 *품번:* M-200 (Bracket)\n" +
		"🏭 *라인:* R01\n" +
		"📊 *총 재고:* 50\n" +
		"📉 *필요 수량:* 80\n" +
		"⚠️ *부족 수량:* 30\n" +
		"⚠️ *예상 잔여 재고:* -30\n\n" +
		"📦 *품번:* M-100 (Bolt)\n" +
		"🏭 *라인:* F31\n" +
		"📊 *총 재고:* 0\n" +
		"📉 *필요 수량:* 10\n" +
		"⚠️ *부족 수량:* 10\n" +
		"⚠️ *예상 잔여 재고:* -10\n\n"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "🔹")
}

func TestLotInQuery(t *testing.T) {
	t.Parallel()

	sql, args, err := LotIn().Query()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "WITH REQUIRED_MATERIAL AS ("))
	assert.Contains(t, sql, "LINE IN (@p1,@p2,@p3,@p4)")
	assert.NotContains(t, sql, "?")
	assert.Contains(t, sql, "ORDER BY CASE WHEN RM.WRKSTS = 'W' THEN 1 ELSE 2 END, RM.LINE, RM.SERNO")
	assert.Equal(t, []interface{}{"F01", "R01", "C01", "F31"}, args)
	for _, col := range Columns {
		assert.Contains(t, sql, " AS "+col, "column %s", col)
	}
}

func TestLineQuery(t *testing.T) {
	t.Parallel()

	sql, args, err := Line().Query()
	require.NoError(t, err)

	assert.Contains(t, sql, "WARHS IN (@p1,@p2,@p3,@p4)")
	assert.Contains(t, sql, "LINE IN (@p5,@p6,@p7,@p8)")
	assert.Contains(t, sql, "p.WRK_CD IN (@p9,@p10,@p11,@p12)")
	assert.Contains(t, sql, "FULL JOIN ProductionPlanConverted p")
	assert.Contains(t, sql, "< 0")
	assert.NotContains(t, sql, "ORDER BY")
	assert.Len(t, args, 12)
}

func TestQueryWithoutStatement(t *testing.T) {
	t.Parallel()

	_, _, err := Report{Name: "empty"}.Query()
	require.EqualError(t, err, "report empty has no statement")
}

func TestMessagesCompletedAt(t *testing.T) {
	t.Parallel()

	next := time.Date(2026, time.October, 15, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "✅ *라인 재고 감시 완료!* 다음 감시는 *09:05* 에 시작됩니다. 🕒", Line().Messages.CompletedAt(next))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	assert.Equal(t, []string{LineName, LotInName}, reg.Names())

	rep, err := reg.Resolve(LotInName)
	require.NoError(t, err)
	assert.Equal(t, LotInName, rep.Name)

	_, err = reg.Resolve("daily")
	require.EqualError(t, err, "report daily is not registered (known: line, lotin)")

	var empty Registry
	empty.Register(Report{Name: "custom"})
	_, err = empty.Resolve("custom")
	require.NoError(t, err)
}
