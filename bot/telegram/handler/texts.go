package handler

// User-facing strings are bilingual: Thai first, English after, matching
// the community the bot serves.
var (
	formUsageText = "ส่งฟอร์มยืนยันตัวตนตามนี้ / Send the verification form like this:\n\n" +
		"/verify\n" +
		"ชื่อเล่น: ...\n" +
		"อายุ: ...\n" +
		"เพศ: ...\n" +
		"วันเกิด: วว/ดด/ปปปป (ค.ศ.)\n\n" +
		"ทุกช่องไม่บังคับ แต่ต้องกรอกอย่างน้อยหนึ่งช่อง / every field is optional, fill at least one"

	submittedText = "ส่งคำขอยืนยันตัวตนแล้ว รอแอดมินตรวจสอบ / submitted, waiting for admin review"

	alreadyPendingText  = "คุณมีคำขอที่รอตรวจสอบอยู่แล้ว / you already have a pending request"
	alreadyVerifiedText = "คุณยืนยันตัวตนไปแล้ว / you are already verified"
	submitFailedText    = "ระบบขัดข้อง ลองใหม่อีกครั้ง / something went wrong, please try again"

	invalidAgeText      = "อายุต้องเป็นตัวเลขเท่านั้น / age must be digits only"
	invalidNicknameText = "ชื่อเล่นต้องยาว 2-10 ตัวอักษร ไม่มีตัวเลข สัญลักษณ์ หรืออิโมจิ / nickname must be 2-10 letters, no digits, symbols or emoji"
	nicknameClashText   = "ชื่อเล่นต้องไม่ซ้ำกับชื่อในโปรไฟล์ / nickname must differ from your profile name"
	invalidGenderText   = "เพศต้องไม่มีตัวเลข สัญลักษณ์ หรืออิโมจิ / gender must not contain digits, symbols or emoji"
	invalidBirthdayText = "วันเกิดต้องเป็น วว/ดด/ปปปป และเป็นวันที่จริง / birthday must be dd/mm/yyyy and a real date"

	approvedUserText = "ยินดีด้วย! คุณผ่านการยืนยันตัวตนแล้ว / congrats, you are verified!"
	rejectedUserText = "คำขอยืนยันตัวตนของคุณถูกปฏิเสธ ตรวจสอบฟอร์มแล้วส่งใหม่ได้เลย / your verification was rejected, please check the form and resubmit"

	cardHeaderText = "คำขอยืนยันตัวตน / verification request"

	approveButtonText = "✅ อนุมัติ"
	rejectButtonText  = "❌ ปฏิเสธ"

	decisionDoneText    = "บันทึกผลแล้ว / recorded"
	alreadyDecidedText  = "คำขอนี้ถูกตัดสินไปแล้ว / this request was already decided"
	decisionDeniedText  = "เฉพาะแอดมินเท่านั้น / admins only"
	cardUnknownText     = "ไม่พบคำขอของการ์ดนี้ / no request found for this card"
	noPermissionText    = "บอทไม่มีสิทธิ์จัดการโรล / the bot lacks role permissions"
	decisionFailedText  = "บันทึกผลไม่สำเร็จ ลองใหม่ / failed to record, try again"
	dmFailedWarningText = "บันทึกผลแล้ว แต่ส่ง DM หาผู้ใช้ไม่สำเร็จ / recorded, but the DM to the user failed"

	setupText = "ยืนยันตัวตนที่นี่ / verify yourself here\n\n" + formUsageText

	statsText = "สถิติการยืนยันตัวตน / verification stats\n" +
		"รอตรวจสอบ / submitted: %d\n" +
		"อนุมัติ / approved: %d\n" +
		"ปฏิเสธ / rejected: %d"
)
