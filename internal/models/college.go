package models

import "time"

// College is a catalog entry. Identifiers and timestamps are assigned by the remote catalog.
type College struct {
	CollegeID   int64      `db:"college_id" json:"collegeId"`
	CollegeName string     `db:"college_name" json:"collegeName"`
	Location    string     `db:"location" json:"location"`
	CreatedAt   *time.Time `db:"created_at" json:"createdAt,omitempty"`
}

// Course belongs to exactly one college.
type Course struct {
	CourseID   int64      `db:"course_id" json:"courseId"`
	CourseName string     `db:"course_name" json:"courseName"`
	Fee        Fee        `db:"fee" json:"fee"`
	CollegeID  int64      `db:"college_id" json:"collegeId"`
	CreatedAt  *time.Time `db:"created_at" json:"createdAt,omitempty"`
}

// CollegeCourseItem is one row of the colleges-with-courses inner join.
type CollegeCourseItem struct {
	CollegeID   int64  `db:"college_id" json:"collegeId"`
	CollegeName string `db:"college_name" json:"collegeName"`
	Location    string `db:"location" json:"location"`
	Course      string `db:"course_name" json:"course"`
	Fee         Fee    `db:"fee" json:"fee"`
}

// CourseEcho is the short course form echoed back by college creation.
type CourseEcho struct {
	CourseName string `json:"courseName"`
	Fee        Fee    `json:"fee"`
}

// CreatedCollege is the create-college response: the created or merged college plus
// the courses attached by this request.
type CreatedCollege struct {
	College
	Courses []CourseEcho `json:"courses,omitempty"`
}
