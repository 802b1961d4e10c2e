package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalityKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Lyon", LocalityKey("10 Rue A Lyon"))
	assert.Equal(t, "Lyon", LocalityKey("  10 Rue A   Lyon  "))
	assert.Equal(t, "", LocalityKey(""))
	assert.Equal(t, "", LocalityKey("   "))
}

func TestSummarize_DistinctLocalities(t *testing.T) {
	t.Parallel()

	records := NormalizeAll([]Raw{
		{"Adresse": "10 Rue A Lyon"},
		{"Adresse": "5 Rue B Lyon"},
		{"Adresse": "2 Rue C Paris"},
	})

	assert.Equal(t, 2, Summarize(records).Localities)
}

func TestSummarize_EmptyAddressCountsAsOneKey(t *testing.T) {
	t.Parallel()

	records := NormalizeAll([]Raw{
		{"Adresse": "10 Rue A Lyon"},
		{},
		{"Adresse": ""},
	})

	assert.Equal(t, 2, Summarize(records).Localities)
}

func TestSummarize_Counts(t *testing.T) {
	t.Parallel()

	records := NormalizeAll([]Raw{
		{"Nom": "A", "Dirigeants": "X", "Téléphone": "01", "Email": "a@a.fr"},
		{"Nom": "B", "Dirigeants": "Y", "Email": "not-an-email"},
		{"Nom": "C", "Téléphone trouvé sur site": "02"},
	})

	s := Summarize(records)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.ManagersFound)
	assert.Equal(t, 2, s.PhonesFound)
	assert.Equal(t, 1, s.EmailsFound)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Summary{}, Summarize(nil))
}
