package hiscores

import "testing"

func TestSkills_CoversEveryTable(t *testing.T) {
	skills := Skills()
	if len(skills) != 29 {
		t.Fatalf("Skills() returned %d entries, want 29", len(skills))
	}
	if skills[0] != Overall {
		t.Errorf("Skills()[0] = %v, want overall", skills[0])
	}
	for i, s := range skills {
		if s.TableID() != i {
			t.Errorf("Skills()[%d].TableID() = %d, want %d", i, s.TableID(), i)
		}
	}
}

func TestTableIDs_AreTheExternalContract(t *testing.T) {
	cases := []struct {
		skill Skill
		id    int
	}{
		{Overall, 0},
		{Attack, 1},
		{Constitution, 4},
		{Divination, 26},
		{Invention, 27},
		{Archaeology, 28},
	}
	for _, c := range cases {
		if got := c.skill.TableID(); got != c.id {
			t.Errorf("%s.TableID() = %d, want %d", c.skill, got, c.id)
		}
	}
}

func TestFromName(t *testing.T) {
	s, ok := FromName("attack")
	if !ok || s != Attack {
		t.Errorf("FromName(attack) = %v, %v", s, ok)
	}
	s, ok = FromName("  Runecrafting ")
	if !ok || s != Runecrafting {
		t.Errorf("FromName with whitespace and case = %v, %v", s, ok)
	}
	if _, ok := FromName("sailing"); ok {
		t.Error("FromName(sailing) succeeded, want failure")
	}
}

func TestThresholds(t *testing.T) {
	if got := Attack.XP99(); got != 13034431 {
		t.Errorf("attack XP99 = %d", got)
	}
	if got := Attack.XP120(); got != 104273167 {
		t.Errorf("attack XP120 = %d", got)
	}
	if got := Invention.XP99(); got != 36073511 {
		t.Errorf("invention XP99 = %d, want elite threshold", got)
	}
	if got := Invention.XP120(); got != 80618654 {
		t.Errorf("invention XP120 = %d, want elite threshold", got)
	}
	if got := Archaeology.XP99(); got != 13034431 {
		t.Errorf("archaeology XP99 = %d, want the default threshold", got)
	}
	if got := Attack.XPMax(); got != 200000000 {
		t.Errorf("attack XPMax = %d", got)
	}
	if got := Overall.XPMax(); got != 200000000*28 {
		t.Errorf("overall XPMax = %d, want the sum of all 28 skill caps", got)
	}
}

func TestThreshold_ByKind(t *testing.T) {
	cases := []struct {
		skill Skill
		kind  CountKind
		want  int
	}{
		{Magic, Count99, 13034431},
		{Magic, Count120, 104273167},
		{Magic, CountMax, 200000000},
		{Invention, Count99, 36073511},
		{Overall, CountMax, 5600000000},
	}
	for _, c := range cases {
		if got := c.skill.Threshold(c.kind); got != c.want {
			t.Errorf("%s.Threshold(%d) = %d, want %d", c.skill, c.kind, got, c.want)
		}
	}
}

func TestIsElite(t *testing.T) {
	for _, s := range Skills() {
		want := s == Invention
		if got := s.IsElite(); got != want {
			t.Errorf("%s.IsElite() = %v, want %v", s, got, want)
		}
	}
}
