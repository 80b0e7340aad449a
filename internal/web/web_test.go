package web

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yigit/studentrecords/internal/app/models"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	for _, name := range []string{"student_form.html", "student_management.html", "student_update.html"} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("template %s not found", name)
		}
	}
}

func TestUpdateTemplatePrefillsValues(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "student_update.html", map[string]interface{}{
		"ID":      "R100",
		"Student": models.StudentRecord{"rollNo": "R100", "studentName": "Asha <Rao>"},
	})
	if err != nil {
		t.Fatalf("ExecuteTemplate: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `value="Asha &lt;Rao&gt;"`) {
		t.Errorf("name not escaped or missing:\n%s", out)
	}
	if !strings.Contains(out, `action="/edit_student/R100"`) {
		t.Errorf("form action missing")
	}
}

func TestFormFieldsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range FormFields {
		if seen[f.Name] {
			t.Errorf("duplicate form field %s", f.Name)
		}
		seen[f.Name] = true
	}
	if !seen[models.FieldRollNo] {
		t.Errorf("roll number input missing")
	}
}

func TestEditLinksEscapeTheID(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	const id = "A#1?x"

	var manage bytes.Buffer
	err = tmpl.ExecuteTemplate(&manage, "student_management.html", map[string]interface{}{
		"Groups": []struct {
			Name     string
			Students []models.ListedStudent
		}{
			{Name: "10A", Students: []models.ListedStudent{{ID: id, Record: models.StudentRecord{"rollNo": id}}}},
		},
		"Total": 1,
	})
	if err != nil {
		t.Fatalf("ExecuteTemplate management: %v", err)
	}
	if !strings.Contains(manage.String(), `href="/edit_student/A%231%3Fx"`) {
		t.Errorf("edit link not escaped:\n%s", manage.String())
	}

	var edit bytes.Buffer
	err = tmpl.ExecuteTemplate(&edit, "student_update.html", map[string]interface{}{
		"ID":      id,
		"Student": models.StudentRecord{"rollNo": id},
	})
	if err != nil {
		t.Fatalf("ExecuteTemplate update: %v", err)
	}
	if !strings.Contains(edit.String(), `action="/edit_student/A%231%3Fx"`) {
		t.Errorf("form action not escaped:\n%s", edit.String())
	}
}
