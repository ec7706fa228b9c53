package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/gsm-perf/performance/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var commonFirstNames = []string{
	"Aïssatou", "Mamadou", "Fatou", "Ousmane", "Awa", "Ibrahima", "Mariama", "Cheikh",
	"Hélène", "Jérôme", "Clémence", "François", "Adèle", "Noël", "Zoé", "Raphaël",
	"Khadija", "Moussa", "Ndèye", "Abdoulaye",
}

var commonLastNames = []string{
	"Diallo", "Ndiaye", "Sow", "Fall", "Diop", "Ba", "Kane", "Cissé", "Guèye", "Sèye",
	"Lefèvre", "Martin", "Bérenger", "Dupré", "Thiam", "Mbengue",
}

var neighborhoods = []string{
	"Plateau", "Médina", "Almadies", "Parcelles Assainies", "Grand Yoff", "Ouakam", "Pikine",
}

func GenerateRandomName() (string, string) {
	return commonFirstNames[rand.Intn(len(commonFirstNames))], commonLastNames[rand.Intn(len(commonLastNames))]
}

// FoldAccents retire les diacritiques : « Aïssatou Cissé » devient « Aissatou Cisse ».
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// EmailLocalPart construit « prenom.nom » en ASCII minuscule, sans espace ni apostrophe.
func EmailLocalPart(firstName, lastName string) string {
	clean := func(s string) string {
		s = strings.ToLower(FoldAccents(s))
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				return r
			case r == ' ', r == '-':
				return '-'
			default:
				return -1
			}
		}, s)
	}
	return clean(firstName) + "." + clean(lastName)
}

var digits = "0123456789"

func GenerateRandomUser(password string, emailDomainName string, teams []domain.Team) (*domain.User, error) {
	firstName, lastName := GenerateRandomName()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	suffix := make([]byte, rand.Intn(3)+1)
	for i := range suffix {
		suffix[i] = digits[rand.Intn(len(digits))]
	}

	team := domain.DefaultTeams[rand.Intn(len(domain.DefaultTeams))]
	if len(teams) > 0 {
		team = teams[rand.Intn(len(teams))]
	}

	user := &domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        EmailLocalPart(firstName, lastName) + string(suffix) + "@" + emailDomainName,
		PasswordHash: string(passwordHash),
		Role:         domain.RoleAgent,
		Team:         team.Name,
		Department:   team.Department,
		Contact:      fmt.Sprintf("77%07d", rand.Intn(10000000)),
		Neighborhood: neighborhoods[rand.Intn(len(neighborhoods))],
		Status:       domain.UserStatusActive,
	}

	return user, nil
}

// GenerateRandomPerformance produit une saisie plausible : le plus souvent entre 5 et 20 cas,
// majoritairement résolus.
func GenerateRandomPerformance(user *domain.User, date time.Time) *domain.PerformanceRecord {
	total := rand.Intn(16) + 5
	resolved := total * (50 + rand.Intn(40)) / 100
	unreachable := rand.Intn(total - resolved + 1)

	return &domain.PerformanceRecord{
		Date:        date,
		UserID:      user.ID,
		UserName:    user.Name(),
		Team:        user.Team,
		CaseType:    domain.CaseTypes[rand.Intn(len(domain.CaseTypes))],
		Resolved:    resolved,
		Unreachable: unreachable,
		Untreated:   total - resolved - unreachable,
	}
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}
