package rules

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Sor85/miao-kit/internal/model"
	"github.com/Sor85/miao-kit/internal/storage"
)

type rulesSuite struct {
	suite.Suite
	*Store
	file string
}

func (suite *rulesSuite) SetupTest() {
	suite.file = filepath.Join(suite.T().TempDir(), "rules.json")
	suite.Store = NewStore(suite.file, slog.Default())
}

func (suite *rulesSuite) newRule(source, target string) model.Rule {
	return model.Rule{
		ID:        uuid.New().String(),
		Mode:      model.ModeRedirect,
		Source:    source,
		Target:    target,
		KeepQuery: true,
	}
}

func (suite *rulesSuite) TestListEmpty() {
	suite.Empty(suite.List())
}

func (suite *rulesSuite) TestListBrokenFile() {
	err := os.WriteFile(suite.file, []byte("не json"), 0o644)
	suite.Require().NoError(err)
	// битый файл правил равнозначен отсутствию правил
	suite.Empty(suite.List())
}

func (suite *rulesSuite) TestAdd() {
	first := suite.newRule("/api/a", "https://example.com")
	suite.NoError(suite.Add(first))

	// источник должен быть уникален
	second := suite.newRule("/api/a", "https://other.example.com")
	suite.ErrorIs(suite.Add(second), storage.ErrRuleSourceExists)

	third := suite.newRule("/api/b", "https://other.example.com")
	suite.NoError(suite.Add(third))

	saved := suite.List()
	suite.Require().Len(saved, 2)
	suite.EqualValues(first.ID, saved[0].ID)
	suite.EqualValues(third.ID, saved[1].ID)
}

func (suite *rulesSuite) TestUpdate() {
	first := suite.newRule("/api/a", "https://example.com")
	second := suite.newRule("/api/b", "https://example.com")
	suite.Require().NoError(suite.Add(first))
	suite.Require().NoError(suite.Add(second))

	// собственный источник при обновлении не считается конфликтом
	upd := first
	upd.Name = "обновленное"
	upd.Mode = model.ModeProxy
	updated, err := suite.Update(first.ID, upd)
	suite.NoError(err)
	suite.EqualValues(first.ID, updated.ID)
	suite.EqualValues("обновленное", updated.Name)
	suite.EqualValues(model.ModeProxy, updated.Mode)
	suite.NotEmpty(updated.UpdatedAt)

	// чужой источник занят
	upd = second
	upd.Source = "/api/a"
	_, err = suite.Update(second.ID, upd)
	suite.ErrorIs(err, storage.ErrRuleSourceExists)

	// неизвестный id
	_, err = suite.Update("нет такого", suite.newRule("/api/c", "https://example.com"))
	suite.ErrorIs(err, storage.ErrRuleNotFound)
}

func (suite *rulesSuite) TestDelete() {
	first := suite.newRule("/api/a", "https://example.com")
	suite.Require().NoError(suite.Add(first))

	suite.ErrorIs(suite.Delete("нет такого"), storage.ErrRuleNotFound)
	suite.NoError(suite.Delete(first.ID))
	suite.Empty(suite.List())

	// после удаления источник снова свободен
	suite.NoError(suite.Add(suite.newRule("/api/a", "https://example.com")))
}

func TestRulesSuite(t *testing.T) {
	suite.Run(t, new(rulesSuite))
}
