package planner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/rnwolfe/rack/internal/task"
)

var allConfidences = []task.Confidence{task.ConfidenceHigh, task.ConfidenceMedium, task.ConfidenceLow}

func genRatedTask(id string) *rapid.Generator[task.Task] {
	return rapid.Custom(func(t *rapid.T) task.Task {
		tk := rated(id,
			rapid.IntRange(1, 5).Draw(t, "a"),
			rapid.IntRange(1, 5).Draw(t, "c"),
			rapid.IntRange(1, 5).Draw(t, "e"),
			rapid.IntRange(0, 2).Draw(t, "l"),
			rapid.IntRange(0, 2).Draw(t, "m"),
			rapid.IntRange(0, 2).Draw(t, "t"),
			rapid.SampledFrom(task.EstimateBuckets).Draw(t, "estimate"),
			rapid.SampledFrom(allConfidences).Draw(t, "confidence"),
		)
		tk.Status = rapid.SampledFrom([]task.Status{task.StatusToday, task.StatusTomorrow, task.StatusNext}).Draw(t, "status")
		if rapid.Bool().Draw(t, "hasDue") {
			tk.DueDate = task.AddDays(fridayISO, rapid.IntRange(-3, 10).Draw(t, "due"))
		}
		if rapid.Bool().Draw(t, "hasScheduled") {
			tk.ScheduledFor = task.AddDays(fridayISO, rapid.IntRange(-3, 3).Draw(t, "scheduled"))
		}
		return tk
	})
}

func TestBufferMinutesProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		est := rapid.SampledFrom(task.EstimateBuckets).Draw(t, "estimate")
		conf := rapid.SampledFrom(allConfidences).Draw(t, "confidence")
		factor := rapid.Float64Range(MinCalibrationFactor, MaxCalibrationFactor).Draw(t, "factor")

		got := BufferMinutes(est, conf, factor)
		if got%BufferStep != 0 {
			t.Fatalf("BufferMinutes(%d, %s, %v) = %d, not a multiple of %d", est, conf, factor, got, BufferStep)
		}
		if got < est {
			t.Fatalf("BufferMinutes(%d, %s, %v) = %d, below the raw estimate", est, conf, factor, got)
		}
	})
}

func TestCalibrationFactorBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(t, "n")
		var history []task.CalibrationEntry
		for i := 0; i < n; i++ {
			history = append(history, task.CalibrationEntry{
				Estimate: rapid.IntRange(-10, 500).Draw(t, fmt.Sprintf("est%d", i)),
				Actual:   rapid.IntRange(-10, 5000).Draw(t, fmt.Sprintf("act%d", i)),
			})
		}
		f := CalibrationFactor(history)
		if f < MinCalibrationFactor || f > MaxCalibrationFactor {
			t.Fatalf("CalibrationFactor = %v, outside bounds", f)
		}
	})
}

func TestRerackCapacityRespected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(0, 600).Draw(t, "capacity")
		n := rapid.IntRange(0, 12).Draw(t, "n")
		var inputs []RerackInput
		for i := 0; i < n; i++ {
			tk := genRatedTask(fmt.Sprintf("t%d", i)).Draw(t, fmt.Sprintf("task%d", i))
			inputs = append(inputs, RerackInput{
				Task:      tk,
				Minutes:   rapid.IntRange(0, 300).Draw(t, fmt.Sprintf("minutes%d", i)),
				Protected: rapid.Float64Range(0, 1).Draw(t, fmt.Sprintf("p%d", i)) < 0.25,
			})
		}
		plan := Rerack(capacity, inputs, nil, ReasonOutranked)

		var flexible, protected int
		for _, k := range plan.Keep {
			if k.Protected {
				protected += k.Minutes
			} else {
				flexible += k.Minutes
			}
		}
		if flexible > capacity {
			t.Fatalf("flexible kept %d minutes over capacity %d", flexible, capacity)
		}
		if protected != plan.ProtectedMinutes || plan.ProtectedOverflow != (protected > capacity) {
			t.Fatalf("protected %d, plan %d, overflow %v", protected, plan.ProtectedMinutes, plan.ProtectedOverflow)
		}
		if len(plan.Keep)+len(plan.Overflow) != len(inputs) {
			t.Fatalf("lost tasks: %d kept + %d overflow != %d", len(plan.Keep), len(plan.Overflow), len(inputs))
		}
		for _, in := range inputs {
			if !in.Protected {
				continue
			}
			for _, o := range plan.Overflow {
				if o.Task.ID == in.Task.ID {
					t.Fatalf("protected task %s overflowed", in.Task.ID)
				}
			}
		}
	})
}

func TestTop3CardinalityUnderSetTop3(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t, friday)
		ctx := context.Background()

		n := rapid.IntRange(1, 8).Draw(rt, "n")
		for i := 0; i < n; i++ {
			f.put(t, genRatedTask(fmt.Sprintf("t%d", i)).Draw(rt, fmt.Sprintf("task%d", i)))
		}

		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for s := 0; s < steps; s++ {
			id := fmt.Sprintf("t%d", rapid.IntRange(0, n-1).Draw(rt, "id"))
			on := rapid.Float64Range(0, 1).Draw(rt, "on") < 0.7
			manual := rapid.Bool().Draw(rt, "manual")
			_, err := f.p.SetTop3(ctx, id, on, manual)
			if err != nil && !IsConstraint(err, CodeMonsterLimit) && !IsConstraint(err, CodeTop3Full) {
				rt.Fatalf("SetTop3: %v", err)
			}

			all, _ := f.tasks.All(ctx)
			members := Top3Members(all, fridayISO)
			if len(members) > MaxTop3 {
				rt.Fatalf("%d Top-3 members", len(members))
			}
			monsters := 0
			for _, m := range members {
				if task.IsMonsterEffective(m, all) {
					monsters++
				}
			}
			if monsters > 1 {
				rt.Fatalf("%d monster members", monsters)
			}
		}
	})
}

func TestSuggestTop3Cardinality(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t, friday)
		n := rapid.IntRange(0, 10).Draw(rt, "n")
		for i := 0; i < n; i++ {
			f.put(t, genRatedTask(fmt.Sprintf("t%d", i)).Draw(rt, fmt.Sprintf("task%d", i)))
		}
		f.set.s.WeekdayCapacity = rapid.IntRange(0, 600).Draw(rt, "capacity")

		s, err := f.p.SuggestTop3(context.Background())
		if err != nil {
			rt.Fatal(err)
		}
		if len(s.Suggested) > MaxTop3 || s.MonsterCount > 1 {
			rt.Fatalf("suggestion = %d tasks, %d monsters", len(s.Suggested), s.MonsterCount)
		}
		if s.LockedCount == 0 && s.UsedMinutes > s.Capacity {
			rt.Fatalf("used %d of %d", s.UsedMinutes, s.Capacity)
		}
	})
}

func TestRunDailyMaintenanceIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t, friday)
		ctx := context.Background()
		f.set.s.WeekdayCapacity = rapid.IntRange(0, 480).Draw(rt, "capacity")

		n := rapid.IntRange(0, 10).Draw(rt, "n")
		for i := 0; i < n; i++ {
			tk := genRatedTask(fmt.Sprintf("t%d", i)).Draw(rt, fmt.Sprintf("task%d", i))
			if rapid.Bool().Draw(rt, "top3") {
				tk.IsTop3 = true
				tk.Top3Date = task.AddDays(fridayISO, -rapid.IntRange(0, 2).Draw(rt, "age"))
				tk.Top3Locked = rapid.Bool().Draw(rt, "locked")
			}
			f.put(t, tk)
		}

		if _, err := f.p.RunDailyMaintenance(ctx); err != nil {
			rt.Fatal(err)
		}
		once, _ := f.tasks.All(ctx)
		f.now = f.now.Add(time.Minute)
		if _, err := f.p.RunDailyMaintenance(ctx); err != nil {
			rt.Fatal(err)
		}
		twice, _ := f.tasks.All(ctx)

		for i := range once {
			a, b := once[i], twice[i]
			if a.Status != b.Status || a.ScheduledFor != b.ScheduledFor || a.IsTop3 != b.IsTop3 || a.Top3Date != b.Top3Date {
				rt.Fatalf("%s differs after second run: %+v vs %+v", a.ID, a, b)
			}
		}
	})
}
